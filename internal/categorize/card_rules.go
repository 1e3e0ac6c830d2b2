package categorize

// DefaultCardRules returns the built-in credit card rule table.
func DefaultCardRules() *RuleSet {
	return NewRuleSet(DefaultFallback,
		rule("CREDIT_CARD_PAYMENT", Contains(
			"PAYMENT THANK YOU-MOBILE",
			"AUTOMATIC PAYMENT - THANK",
			"PAYMENT THANK YOU - WEB",
		)),
		rule("OVATION", Contains("SQ *OVATION COFFEE")),
		rule("OTHER_COFFEE_SHOPS", Contains(
			"SQ *COFFEE TIME",
			"CAFFE UMBRIA PORTLAND",
			"SQ *SISTERS COFFEE COMPAN",
			"TST*CAFFE UMBRIA PORTLAN",
			"GOOD COFFEE",
		)),
		rule("EATING_OUT_NBHD_LUNCH", Contains(
			"CHIPOTLE ONLINE",
			"TST*PIZZICATO - PEARL",
			"TST* PIZZICATO - PEARL",
			"SQ *LOVEJOY BAKERS",
			"CHIPOTLE MEX GR ONLINE",
			"CHIPOTLE 1358",
		)),
		rule("DOMINOS", Contains("DOMINO")),
		rule("CONCERTS", Contains(
			"HAWTHORNE THEATER",
			"TST*REVOLUTION HALL",
			"TST* MCMENAMINS - CRYSTAL",
			"CASCADES AMPHITHEATRE",
			"SEATGEEK TICKETS",
			"AXS.COMFESTIVAL GV R",
			"TM *KAYTRANADA X JUSTI",
			"MCMENAMINS CONCERTS",
			"CASCADE TICKETS",
			"REVOLUTION HALL",
			"TCKTWEB*GOATWHOREVITRI",
			"PP*GATES TO HELL",
			"SQ *VITRIOL",
		)),
		rule("NBHD_BARS", Contains(
			"PAYMASTER LOUNGE",
			"TST* JERRY'S TAVERN",
			"JOES CELLAR",
			"JOE'S CELLAR",
			"SPO*THEFIELDSBAR&AMP;GRILL",
			"THE FIELDS BAR &AMP; GRILL",
			"CARLITAS",
			"THEFIELDSBAR",
		)),
		rule("RIDESHARE", Contains("LYFT", "UBER")),
		rule("GROCERIES", Contains(
			"SAFEWAY #2790",
			"NEW SEASONS MARKET",
			"WHOLEFDS PRT 10148",
			"FRED-MEYER #0360",
			"ZUPAN'S MARKET",
			"COSTCO WHSE #0111",
			"ALBERTSONS #3531",
			"WHOLEFDS BRD 10266",
			"WHOLE FOODS PRT 10148",
			"UWAJIMAYA",
			"TRADER JOE S #146",
			"THE MEATING PLACE",
			"WORLD FOODS",
			"COSTCO WHSE #0780",
			"CVS/PHARMACY #11282",
		)),
		rule("LIQUOR_STORE", Contains("LIQUOR STORE", "ROLLING RIVER SPIRITS")),
		rule("PGE", Equals("PORTLAND GENERAL ELECTRIC")),
		rule("GYM_MEMBERSHIP", Contains("LA FIT")),
		rule("SPOTIFY_MEMBERSHIP", Contains("SPOTIFY")),
		rule("COMCAST", Contains("COMCAST")),
		rule("HAIRCUT", Contains("SQ *MICHELLE THRASHER", "SQ *SLABTOWN BARBERSHOP")),
		rule("POWELLS", Equals("POWELL'S BURNSIDE")),
		rule("MOVIES", Contains(
			"REGAL CINEMAS INC",
			"CINEMA 21",
			"FOX TOWER STM 10",
			"HOLLYWOOD THEATRE",
			"LIVING ROOM THEATERS",
			"REGAL BRIDGEPORT 0652",
		)),
		rule("WEDDING", Contains(
			"BLACK BUTTE RANCH (1)",
			"ZOLA.COM*REGISTRY",
			"BLACK BUTTE RANCH FOOD",
			"IN *THE BOB LLC",
			"FORYOURPARTY",
			"SISTERS SALOON &AMP; RANCH",
			"PROPER CLOTH",
			"MORJAS",
			"EUROPEAN MASTER TAILOR",
		)),
		rule("FAST_FOOD", Contains(
			"SQ *SHAKE SHACK",
			"MCDONALD'S",
			"BURGERVILLE",
			"JACK IN THE BOX 7160",
		)),
		rule("EATING_OUT", Contains(
			"SQ *GASTRO MANIA",
			"JOJO PEARL",
			"TST* WILD CHILD PIZZA - F",
			"MOMO YAMA",
			"TST* SIZZLE PIE - WEST",
			"TST* MISSISSIPPI STUDIOS",
			"TST* 10 BARREL BREWING -",
			"TST* SCOTTIE'S PIZZA PARL",
			"TST* BREAKSIDE BREWERY -",
			"TST* 10 BARREL PORTLAND N",
			"TST* QDS",
			"TST* SILVER HARBOR BREWIN",
			"TST*RIVER PIG - PORTLAND",
			"YAMA SUSHI AND SAKE BAR",
			"BANNINGS RESTAURANT &AMP; PIE",
			"TST* GARDEN TAVERN",
			"TST* FIRE ON THE MOUNTAIN",
			"THE TRIPLE LINDY",
			"SQ *SCOTTIE'S PIZZA PARLO",
			"SQ *RANCH PIZZA SOUTHEAST",
			"PROST TAVERN PORTLAND",
			"RINGSIDE STEAK HOUSE WEST",
			"SQ *GROUND KONTROL CLASSI",
			"SQ *BAERLIC SOUTHEAST",
			"LOYAL LEGION",
			"MARATHON TAVERNA",
			"OX",
			"LUCKY LABRADOR BEER HALL",
			"K-TOWN KOREAN BBQ",
			"PORTLAND CITY GRILL-PO",
			"HALE PELE",
			"SQ *UPRIGHT BREWING",
			"SQ *FREELAND SPIRITS",
			"SQ *JOHNS MARKETPLACE",
			"9TH AVE MINI MART",
			"ORGEATWORKS",
			"AP MARKET",
			"DIVISION FOOD MART PDX",
			"ALBERTA STREET MARKET",
			"SQ *UP NORTH SURF CLUB",
			"RAYS FOOD PLACE #45",
			"50TH MARKET ",
			"GROUND KONTROL CLASSIC AR",
			"KINGPINS - BEAVERTON - BO",
			"BANNINGS RESTAURANT",
			"RANCH PIZZA",
		)),
		rule("CLOTHES", Contains(
			"NORDSTROM",
			"FJAELLRAEVEN",
			"ON INC",
			"TOMMY BAHAMA 613",
			"WARBY PARKER",
			"BONOBOS",
			"VINTAGE SPORTS FASHION",
			"SP WADE AND WILLIAMS",
			"SP ANDAFTERTHAT",
		)),
		rule("ARSENAL", Contains("ARSENAL")),
		rule("PHYSICAL_MEDIA", Contains(
			"EVERYDAY MUSIC",
			"CRITERION.COM",
			"BARNES&AMP;NOBLE PAPERSOURCE",
			"BARNES &AMP; NOBLE 2371",
			"MUSIC MILLENNIUM",
			"ARROW FILMS",
		)),
		rule("APPLE_CLOUD_STORAGE", Equals("APPLE.COM/BILL")),
		rule("TRAVEL_LODGING", Contains(
			"WARWICK ALLERTON HOTEL",
			"HOOD RIVER HOTEL",
			"AIRBNB * HMPSDMXX99",
			"COURTYARD BY MARRIOTT",
			"MARRIOTT SN FRAN MARQU",
			"BEST WESTERN PONDEROSA",
			"HILTON",
		)),
		rule("FLIGHTS", Contains("ALASKA AIR", "UNITED ", "AMERICAN AIR")),
		rule("PARKING", Contains("PARKING")),
		rule("MODA_CENTER", Contains("MODA CENTER")),
		rule("HBO_SUBSCRIPTION", Equals("ROKU FOR WARNERMEDIA GLOB")),
		rule("INDOOR_SOCCER", Contains("PORTLAND INDOOR SOCCE")),
		rule("GIFTS", Contains(
			"PENDLETON",
			"LULULEMON BRIDGEPORT",
			"HONEYFUND.COMGIFTCARDS",
			"SP KIRIKO",
			"SP BABYLIST",
			"SP WWW.POSHBABY.COM",
			"SQ *VIK ROASTERS",
			"SP ECRU MODERN STATI",
			"LS OBLATIONPAPERS.COM",
		)),
		rule("HOME_IMPROVEMENT", Contains(
			"PEARL HARDWARE",
			"CRATE &AMP; BARREL #454",
			"RESTORATION HARDWARE",
			"THE HOME DEPOT 4002",
			"WILLIAMS-SONOMA 6324",
			"KITCHEN KABOODLE",
		)),
		rule("SURFING", Contains("GORGE PERFORMANCE", "SP TRAVELERSURFCLUB")),
		rule("VIDEO_GAMES", Contains("XBOX", "PLAYSTATION")),
		rule("DRY_CLEANING", Contains("WILLAMETTE DRY")),
		rule("VOD_AMAZON", Contains("PRIME VIDEO", "GOOGLE *TV")),
		rule("CAR_INSURANCE", Contains("GEICO")),
		rule("CAR_MAINTENANCE", Contains("LES SCHWAB TIRES #0243", "ODOT DMV2U", "DEQ VIP DEQ TOO")),
		rule("HOSTING_SOFTWARE_PROJECTS", Contains(
			"DNH*DOMAINS#3405924658",
			"GOOGLE *DOMAINS",
			"AMAZON WEB SERVICES",
			"DIGITALOCEAN.COM",
		)),
		rule("AI_SUBSCRIPTION", Contains("CLAUDE.AI SUBSCRIPTION", "CHATGPT SUBSCRIPTION", "OPENAI")),
		rule("AMAZON_PRIME", Contains("AMAZON PRIME")),
		rule("AMAZON_PURCHASE", Contains("AMAZON", "AMZN")),
		rule("CHESS_SUBSCRIPTION", Contains("CHESS.COM")),
		rule("MTG", Contains("TCGPLAYER", "MAKEPLAYINGCARDS")),
		rule("PEACOCK_SUBSCRIPTION", Equals("ROKU FOR PEACOCK TV LLC")),
		rule("PARAMOUNT_SUBSCRIPTION", Contains("GOOGLE *PARAMOUNT", "CBS MOBILE APP")),
		rule("GAS", Contains("ASTRO", "SHELL", "76", "CHEVRON")),
		rule("FILING_TAXES", Equals("HRB ONLINE TAX PRODUCT")),
		rule("DIAMOND_INSURANCE", Equals("JEWELERS-MUTUAL-PMNT")),
		rule("BLAZER_VISION_SUBSCRIPTION", Equals("BLAZERVISION")),
		rule("PODCAST_SUBSCRIPTION", Equals("DUNCD ON PRIME")),
		rule("PORTLAND_ARTS_TAX", Contains("ARTS TAX")),
		rule("COMPUTERS_TECHNOLOGY_HARDWARE", Contains("OPAL CAMERA")),
		rule("SHIPPING", Contains("USPS PO", "FEDEX OFFIC")),
		rule("RODEO", Contains("RODEO")),
		rule("OTHER_TRANSPORTATION", Contains("ENTERPRISE RENT", "AMTRAK")),
	)
}
