package taxonomy

type group struct {
	meta        string
	domain      Domain
	description string
	categories  []string
}

var defaultGroups = []group{
	{"HOUSING", DomainSpending, "mortgage and HOA", []string{"MORTGAGE_PAYMENT", "HOA_PAYMENT"}},
	{"WEDDING", DomainSpending, "wedding costs", []string{
		"JENNA_WEDDING_ACCT_TRANSFERS", "WEDDING_PHOTOGRAPHER", "WEDDING", "CASH_WITHDRAWL_FOR_WEDDING",
	}},
	{"ENTERTAINMENT_SUBSCRIPTIONS", DomainSpending, "streaming and app subscriptions", []string{
		"PODCAST_SUBSCRIPTION", "HBO_SUBSCRIPTION", "SPOTIFY_MEMBERSHIP", "APPLE_CLOUD_STORAGE",
		"AI_SUBSCRIPTION", "PARAMOUNT_SUBSCRIPTION", "CHESS_SUBSCRIPTION", "AMAZON_PRIME",
		"BLAZER_VISION_SUBSCRIPTION", "PEACOCK_SUBSCRIPTION", "VIDEO_GAMES",
	}},
	{"INCOME", DomainIncome, "", []string{
		"SALARY", "CASH_DEPOSIT", "TAX_REFUND", "ACCOUNT_INTEREST",
		"PORTLAND_ARTS_TAX", "FILING_TAXES", "VENMO_CASHOUT",
	}},
	{"CASH_WITHDRAWL", DomainSpending, "", []string{"CASH_WITHDRAWL"}},
	{"INSURANCE", DomainSpending, "", []string{"CAR_INSURANCE", "DIAMOND_INSURANCE", "COBRA_PAYMENTS"}},
	{"UTILITIES", DomainSpending, "", []string{"CELL_PHONE_BILL", "COMCAST", "PGE", "HAIRCUT"}},
	{"EATING_OUT", DomainSpending, "restaurants, bars and coffee", []string{
		"FAST_FOOD", "OVATION", "OVATION_WEEKEND", "EATING_OUT_NBHD_LUNCH", "OVATION_WEEKDAY",
		"EATING_OUT", "DOMINOS", "OTHER_COFFEE_SHOPS", "NBHD_BARS",
	}},
	{"GROCERIES", DomainSpending, "", []string{"GROCERIES"}},
	{"TRAVEL", DomainSpending, "", []string{
		"RIDESHARE", "TRAVEL_LODGING", "PARKING", "FLIGHTS", "OTHER_TRANSPORTATION", "PASSPORT_RENEWAL",
	}},
	{"MOVIES", DomainSpending, "", []string{"VOD_AMAZON", "MOVIES"}},
	{"HOBBY_PHYSICAL_MEDIA", DomainSpending, "", []string{"PHYSICAL_MEDIA", "POWELLS", "MTG"}},
	{"CONCERTS_AND_SPORTING_EVENTS", DomainSpending, "", []string{"CONCERTS", "RODEO", "MODA_CENTER"}},
	{"HOBBY_COCKTAILS", DomainSpending, "", []string{"LIQUOR_STORE"}},
	{"HOBBY_SPORTS", DomainSpending, "", []string{"GYM_MEMBERSHIP", "INDOOR_SOCCER", "SURFING"}},
	{"CLOTHES", DomainSpending, "", []string{"CLOTHES", "ARSENAL", "DRY_CLEANING"}},
	{"CAR", DomainSpending, "", []string{"GAS", "CAR_MAINTENANCE"}},
	{"VENMO", DomainSpending, "", []string{"VENMO_PAYMENT"}},
	{"HOBBY_TECH", DomainSpending, "", []string{"HOSTING_SOFTWARE_PROJECTS", "COMPUTERS_TECHNOLOGY_HARDWARE"}},
	{"AMAZON_SPENDING", DomainSpending, "", []string{"AMAZON_PURCHASE"}},
	{"OTHER", DomainSpending, "not rolled up elsewhere", []string{"GIFTS", "HOME_IMPROVEMENT", "SHIPPING", "OTHER"}},
	{"SAVINGS", DomainSavings, "brokerage transfers", []string{"TRANSFER_TO_BROKERAGE", "TRANSFER_FROM_BROKERAGE"}},
	{"TRANSFER", DomainExcluded, "money moving between own accounts", []string{
		"TRANSFER_BETWEEN_CHASE_ACCOUNTS", "CREDIT_CARD_PAYMENT",
	}},
}

// DefaultTaxonomy returns an entry for every category the built-in rule
// tables can produce.
func DefaultTaxonomy() []Entry {
	var entries []Entry
	for _, g := range defaultGroups {
		for _, c := range g.categories {
			entries = append(entries, Entry{
				Category:     c,
				MetaCategory: g.meta,
				Domain:       g.domain,
				Description:  g.description,
			})
		}
	}
	return entries
}
