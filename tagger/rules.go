package tagger

// requirementRule maps include phrases to one requirement tag.
type requirementRule struct {
	Tag     string
	Phrases []string
}

var requirementRules = []requirementRule{
	{
		Tag: TagNoDegree,
		Phrases: []string{
			"no degree", "no-degree", "no diploma", "no diploma required",
			"high school or equivalent", "high school diploma or equivalent",
		},
	},
	{
		Tag: TagNoExperience,
		Phrases: []string{
			"no experience", "entry level", "entry-level", "0 years",
			"zero years", "training provided", "no prior experience",
		},
	},
	{
		Tag: TagUnder3Years,
		Phrases: []string{
			"1 year", "one year", "2 years", "two years", "1-2 years", "2+ years",
		},
	},
	{
		Tag: TagOver3Years,
		Phrases: []string{
			"3 years", "3+ years", "four years", "4 years", "5 years",
			"6 years", "7 years", "8 years", "10 years", "5+ years",
		},
	},
}

// sectorRule holds one sector's include and veto lists. Phrases match by
// substring containment, words only at token boundaries.
type sectorRule struct {
	Tag            string
	IncludePhrases []string
	IncludeWords   []string
	ExcludePhrases []string
	ExcludeWords   []string
	RetailBlocked  bool
}

// retailBlockers veto retail/service roles from the retail-blocked
// sectors regardless of other matches.
var retailBlockers = []string{
	"cashier", "barista", "server", "waiter", "waitress",
	"crew member", "store associate", "retail associate",
	"stock associate", "teacher",
}

var sectorRules = []sectorRule{
	{
		Tag: TagTechnology,
		IncludePhrases: []string{
			"software", "developer", "machine learning", "cloud",
			"cybersecurity", "devops", "full stack", "fullstack",
			"backend", "frontend", "data engineer", "data scientist",
			"database", "network engineer", "systems engineer",
			"sre", "programmer",
			"aws", "azure", "gcp", "cyber",
			"python", "java", "javascript", "typescript", "react", "sql",
			"system administrator",
		},
		IncludeWords: []string{"ai", "ml", "api", "etl"},
		ExcludePhrases: []string{
			"automotive technician",
			"maintenance technician",
			"service technician",
			"hvac technician",
			"repair technician",
			"field technician",
			"pharmacy technician",
			"nail technician",
			"behavior technician",
			"veterinary technician",
			"medical technician",
			"lab technician",
			"manufacturing technician",
			"it support",
			"help desk",
			"desktop support",
			"computer teacher",
			"technology teacher",
			"educational technology",
		},
		ExcludeWords: []string{
			"custodian", "janitor", "plumber", "electrician",
			"mechanic", "installer", "health",
		},
		RetailBlocked: true,
	},
	{
		Tag: TagLifeSciences,
		IncludePhrases: []string{
			"biotech", "bioinformatics", "laboratory", "clinical", "pharma",
			"assay", "regulatory", "molecular", "genomics", "microbiology",
			"biologist", "scientist", "chemist", "gene",
			"therapeutics", "biosciences", "biologics", "diagnostics",
		},
		IncludeWords: []string{"lab", "qc", "qa"},
		ExcludePhrases: []string{
			"nurse", "doctor", "physician", "dentist",
			"dental", "hygienist", "hospital",
		},
		ExcludeWords: []string{"rn", "cna"},
	},
	{
		Tag: TagAeroDefense,
		IncludePhrases: []string{
			"aerospace", "satellite", "space", "radar", "defense",
			"spacecraft", "ground station", "communications satellite",
			"sigint", "clearance", "cleared",
			"aeronautics", "space systems", "defense systems", "satcom",
			"navy", "army",
			"ts/sci", "ts sci", "secret clearance", "top secret",
		},
		IncludeWords:  []string{"rf", "dod"},
		RetailBlocked: true,
	},
}
