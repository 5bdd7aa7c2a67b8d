package config

// Default returns the built-in configuration tuned for Black LGBTQ+ UK
// community content discovery. A TOML file can override any table.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "groq",
			Model:     "llama-3.3-70b-versatile",
			FastModel: "llama-3.1-8b-instant",
		},
		Storage: StorageConfig{
			Path: "data/discovery.db",
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Notify: NotifyConfig{
			FromEmail: "research@blkoutuk.com",
			ToEmail:   "hello@blkoutuk.com",
		},
		Search: SearchConfig{
			MaxResults:    10,
			Region:        "uk-en",
			QueriesPerSec: 1,
			NewsQueries: []string{
				"Black queer UK news",
				"Black LGBTQ Britain",
				"UK Black Pride",
				"QTIPOC UK",
				"Black gay men Britain",
				"Black trans UK",
				"Black lesbian UK",
				"BlackOut UK community",
				"Black queer organizations Britain",
				"Black LGBTQ mental health UK",
				"HIV Black gay men UK",
				"Black queer artists UK",
				"Black LGBTQ film UK",
			},
			EventQueries: []string{
				"QTIPOC events UK",
				"Black LGBTQ party London",
				"Black queer events Manchester",
				"site:outsavvy.com Black LGBTQ",
				"site:eventbrite.co.uk QTIPOC",
				"BBZ London",
				"Misery QTIPOC",
				"Hungama queer",
				"UK Black Pride events",
				"Black gay party UK",
			},
			GrantQueries: []string{
				"LGBTQ+ grants UK",
				"queer community funding UK",
				"Black LGBTQ grants UK",
				"QTIPOC funding opportunities",
				"racial equity LGBTQ funding",
				"intersectional grants UK",
				"participatory arts funding UK",
				"community arts grants UK",
				"Arts Council England open funds",
				"gender justice grants UK",
				"trans community funding UK",
				"community wealth building grants UK",
				"cooperative economy funding",
				"social enterprise grants UK",
				"independent media funding UK",
				"community journalism grants",
				"racial justice funding UK",
				"Black community grants UK",
				"National Lottery Community Fund open",
				"Tudor Trust grants open",
				"Esmee Fairbairn grants open",
				"Paul Hamlyn Foundation grants",
				"Comic Relief grants open",
				"mental health community grants UK",
			},
			NewsFeeds: []string{
				"https://www.voice-online.co.uk/feed/",
				"https://www.gaytimes.com/feed/",
				"https://www.pinknews.co.uk/feed/",
			},
		},
		Scrape: ScrapeConfig{
			Headless:  true,
			TimeoutMS: 30000,
			MaxEvents: 20,
			Platforms: []Platform{
				{
					Name:      "OutSavvy",
					BaseURL:   "https://www.outsavvy.com",
					SearchURL: "https://www.outsavvy.com/search?q=",
					Queries:   []string{"Black LGBTQ", "QTIPOC", "queer POC"},
					Selectors: Selectors{
						Card:  "article",
						Title: "h1",
						Date:  "[class*='time'], [class*='Date'], time, .when",
						Venue: "[class*='Venue'], [class*='Location'], .where, .venue",
						Price: "[class*='price'], .price, .ticket-price",
						Link:  "a[href*='/event/']",
					},
				},
				{
					Name:      "Eventbrite",
					BaseURL:   "https://www.eventbrite.co.uk",
					SearchURL: "https://www.eventbrite.co.uk/d/united-kingdom/",
					Queries:   []string{"Black-queer", "QTIPOC", "Black-LGBTQ"},
					Selectors: Selectors{
						Card:  "[data-testid='event-card'], .search-event-card",
						Title: "h3, .event-card-title",
						Date:  "[data-testid='event-card-date'], .event-card-date",
						Venue: "[data-testid='event-card-location'], .event-card-location",
						Link:  "a",
					},
				},
				{
					Name:      "Moonlight Experiences",
					BaseURL:   "https://www.moonlightexperiences.com",
					SearchURL: "https://www.moonlightexperiences.com/experiences",
					Selectors: Selectors{
						Card: ".experience-card, .event-item, a[href*='/event']",
						Link: "a",
					},
				},
			},
		},
		Domains: DomainPolicyConfig{
			Blacklist: []string{
				"wikipedia.org", "fandom.com", "reddit.com", "pinterest.",
				"tiktok.com", "youtube.com", "twitch.tv", "steampowered.com",
				"ign.com", "metacritic.com", "imdb.com", "genius.com",
				"last.fm", "discogs.com", "aliexpress.", "amazon.",
			},
			NewsWhitelist: []string{
				"theguardian.com", "bbc.co.uk", "independent.co.uk",
				"voice-online.co.uk", "gaytimes.com", "pinknews.co.uk",
				"attitude.co.uk", "divamag.co.uk", "gal-dem.com",
				"blkoutuk.com",
			},
			EventWhitelist: []string{
				"outsavvy", "eventbrite", "moonlight", "londonlgbtq",
				"designmynight", "eventim", "ticketmaster",
				"instagram", "facebook", "twitter", "x.com",
			},
		},
		NewsKeywords: KeywordSets{
			HighRelevance: []string{
				"black queer", "black gay", "black lgbtq", "black trans", "black lesbian",
				"qtipoc", "qpoc", "blkout", "blackout uk", "uk black pride",
				"black bisexual", "black nonbinary", "black non-binary",
				"african diaspora lgbtq", "caribbean lgbtq",
				"windrush lgbtq", "black british queer",
			},
			PrimaryGroup: []string{
				"black", "african", "caribbean", "windrush", "diaspora", "afro",
				"nigerian", "jamaican", "ghanaian", "somali",
			},
			SecondaryGroup: []string{
				"lgbtq", "queer", "gay", "lesbian", "trans", "bisexual",
				"pride", "nonbinary", "non-binary", "drag", "same-sex",
			},
			Locale: []string{
				"uk", "britain", "british", "london", "manchester", "birmingham",
				"bristol", "leeds", "glasgow", "edinburgh", "cardiff",
			},
			Negative: []string{
				"black friday", "blackpool", "blackburn", "blackberry",
				"black sea", "black mirror", "black ops", "blackjack",
			},
		},
		EventKeywords: KeywordSets{
			HighRelevance: []string{
				"black queer", "black gay", "black lgbtq", "black trans", "black lesbian",
				"qtipoc", "qpoc", "uk black pride", "bbz", "pxssy palace", "hungama",
			},
			PrimaryGroup: []string{
				"black", "african", "caribbean", "windrush", "diaspora", "afro",
			},
			SecondaryGroup: []string{
				"lgbtq", "queer", "gay", "lesbian", "trans", "bisexual",
				"pride", "nonbinary", "non-binary", "drag",
			},
			Locale: []string{
				"uk", "britain", "british", "london", "manchester", "birmingham",
				"bristol", "leeds", "glasgow",
			},
			Negative: []string{
				"black friday", "blackpool", "blackburn", "black ops", "blackjack",
			},
		},
		GrantKeywords: GrantKeywords{
			HighRelevance: []string{
				"black lgbtq", "black queer", "qtipoc", "intersectional",
				"queer people of colour", "black gay", "black trans",
				"community-led", "lived experience", "cooperative",
				"community ownership", "participatory", "co-creation",
			},
			PrimaryGroup: []string{
				"black", "african", "caribbean", "afro", "diaspora",
				"ethnic minority", "bame", "people of colour", "poc",
				"global majority", "racialised",
			},
			SecondaryGroup: []string{
				"lgbtq", "lgbt", "queer", "gay", "trans", "transgender",
				"pride", "sexual orientation", "gender identity", "nonbinary",
			},
			Arts: []string{
				"arts", "culture", "creative", "participatory", "co-creation",
				"storytelling", "media", "film", "music", "performance",
			},
			CommunityWealth: []string{
				"cooperative", "co-op", "community ownership", "social enterprise",
				"community wealth", "democratic", "mutual", "worker-owned",
			},
		},
		EventFilter: EventFilterConfig{
			EventIndicators: []string{
				"event", "party", "night", "club", "gathering",
				"show", "performance", "live", "happening", "gig",
				"club night", "celebration", "festival", "pride", "date:",
			},
			NonEventTerms: []string{
				"musician", "band", "game", "character",
				"tv show", "movie", "film", "wikipedia",
				"tutorial", "guide", "tips", "tricks",
			},
		},
		Grants: GrantMetaConfig{
			KnownFunders: []string{
				"National Lottery", "Arts Council", "Tudor Trust", "Esmée Fairbairn",
				"Paul Hamlyn", "Comic Relief", "Joseph Rowntree", "Lankelly Chase",
				"Baring Foundation", "City Bridge", "Trust for London", "Power to Change",
				"Elton John", "LGBT Foundation", "Stonewall",
			},
		},
		NewsBands:  Bands{Floor: 45, HighConfidence: 80, Accept: 70},
		EventBands: Bands{Floor: 75, HighConfidence: 75, Accept: 75},
		GrantBands: Bands{Floor: 40, HighConfidence: 75, Accept: 60},
	}
}
