package categorize

// DefaultBankRules returns the built-in checking/savings rule table.
func DefaultBankRules() *RuleSet {
	return NewRuleSet(DefaultFallback,
		rule("SALARY", Contains(
			"CLEARCOVER INC PAYROLL",
			"FEDEX DATAWORKS DIR DEP",
			"ECONOMIC CONSULT PAYROLL",
			"EMPLOYMT BENEFIT UI BENEFIT PPD",
		)),
		rule("ACCOUNT_INTEREST", Equals("INTEREST PAYMENT")),
		rule("CELL_PHONE_BILL", Contains("VERIZON WIRELESS PAYMENTS")),
		rule("TRANSFER_TO_BROKERAGE", Contains("VANGUARD BUY INVESTMENT")),
		rule("TRANSFER_FROM_BROKERAGE", Contains("VANGUARD SELL INVESTMENT", "APA TREAS 310 MISC PAY PPD")),
		rule("VENMO_PAYMENT", Contains("VENMO PAYMENT")),
		rule("VENMO_CASHOUT", Contains("VENMO CASHOUT")),
		rule("HOA_PAYMENT", Contains("PINNACLE COA")),
		rule("CREDIT_CARD_PAYMENT", Contains("CHASE CREDIT CRD AUTOPAY", "PAYMENT TO CHASE CARD")),
		rule("MORTGAGE_PAYMENT", Contains("ONPOINT COMMUNIT RE PAYMENT", "ONPOINT COMM CU MTG PYMTS")),
		rule("TRANSFER_BETWEEN_CHASE_ACCOUNTS", Contains(
			"ONLINE TRANSFER TO SAV",
			"ONLINE TRANSFER TO CHK",
			"ONLINE TRANSFER FROM SAV",
			"ONLINE TRANSFER FROM CHK",
		)),
		rule("CASH_DEPOSIT", Contains("DEPOSIT ID NUMBER", "REMOTE ONLINE DEPOSIT")),
		// Must precede the generic withdrawal rule.
		rule("CASH_WITHDRAWL_FOR_WEDDING", Equals("WITHDRAWAL 07/14")),
		rule("CASH_WITHDRAWL", Contains("WITHDRAWAL")),
		rule("WEDDING_PHOTOGRAPHER", Contains("ALEX ELISE")),
		rule("COBRA_PAYMENTS", Contains("WEX HEALTH PREMIUMS 28670940 WEB ID")),
		rule("TAX_REFUND", Contains("OR REVENUE DEPT ORSTTAXRFD", "IRS TREAS 310 TAX REF")),
		rule("PASSPORT_RENEWAL", Contains("CHECK # 1976 PASSPORTSERVICES PAYMENT ARC ID")),
		rule("JENNA_WEDDING_ACCT_TRANSFERS", Contains(
			"WESTFIELD BANK ACCTVERIFY",
			"WESTBK CK WEBXFR P2P JENNA CARLSON",
		)),
	)
}
