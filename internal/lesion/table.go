package lesion

var table = map[string]Info{
	Melanoma: {
		Description: "Melanoma is the most serious type of skin cancer. It develops in melanocytes, the cells that produce melanin.",
		Symptoms:    "Asymmetrical moles, irregular borders, color variations, diameter larger than 6mm, evolving characteristics",
		RiskFactors: "UV exposure, fair skin, family history, multiple moles, weakened immune system",
		Treatment:   "Surgical excision, immunotherapy, targeted therapy, chemotherapy in advanced cases",
		Urgency:     "HIGH - Immediate medical attention required",
	},
	BasalCellCarcinoma: {
		Description: "The most common form of skin cancer, arising from basal cells in the epidermis.",
		Symptoms:    "Pearly or waxy bumps, flat flesh-colored lesions, bleeding or scabbing sores",
		RiskFactors: "Chronic sun exposure, fair skin, age over 50, male gender",
		Treatment:   "Surgical excision, Mohs surgery, radiation therapy, topical medications",
		Urgency:     "MODERATE - Schedule appointment within 2-4 weeks",
	},
	SquamousCellCarcinoma: {
		Description: "Second most common skin cancer, developing in squamous cells of the epidermis.",
		Symptoms:    "Red, scaly patches, open sores, elevated growths with central depression",
		RiskFactors: "UV exposure, fair skin, immunosuppression, chronic wounds",
		Treatment:   "Surgical excision, Mohs surgery, radiation therapy, cryotherapy",
		Urgency:     "MODERATE - Schedule appointment within 2-4 weeks",
	},
	ActinicKeratoses: {
		Description: "Precancerous skin lesions caused by sun damage that may develop into squamous cell carcinoma.",
		Symptoms:    "Rough, scaly patches, pink or red coloration, sandpaper-like texture",
		RiskFactors: "Chronic sun exposure, fair skin, age over 40, outdoor occupation",
		Treatment:   "Cryotherapy, topical medications, photodynamic therapy, chemical peels",
		Urgency:     "LOW - Monitor and schedule routine dermatology visit",
	},
	BenignKeratosis: {
		Description: "Non-cancerous skin growths that are generally harmless but may resemble other conditions.",
		Symptoms:    "Waxy, scaly, or slightly raised patches, brown or black coloration",
		RiskFactors: "Age, genetics, sun exposure",
		Treatment:   "Usually no treatment needed, removal for cosmetic reasons if desired",
		Urgency:     "LOW - Routine monitoring recommended",
	},
	MelanocyticNevi: {
		Description: "Common benign moles composed of melanocytes. Most are harmless.",
		Symptoms:    "Brown or black spots, uniform color and shape, stable over time",
		RiskFactors: "Genetics, sun exposure, fair skin",
		Treatment:   "Regular monitoring, removal if changes occur",
		Urgency:     "LOW - Regular self-examination and annual check-ups",
	},
	Dermatofibroma: {
		Description: "Benign fibrous skin tumor, often resulting from minor injuries like insect bites.",
		Symptoms:    "Small, firm nodules, brown or red coloration, dimpling when pinched",
		RiskFactors: "Minor skin trauma, more common in women",
		Treatment:   "Usually no treatment needed, surgical removal if bothersome",
		Urgency:     "LOW - No immediate concern",
	},
	VascularLesions: {
		Description: "Benign growths involving blood vessels in the skin.",
		Symptoms:    "Red or purple spots, may blanch with pressure, various sizes",
		RiskFactors: "Age, genetics, sun exposure",
		Treatment:   "Laser therapy, sclerotherapy, surgical removal if needed",
		Urgency:     "LOW - Cosmetic concern, routine evaluation",
	},
}

var fallback = Info{
	Description: "Skin condition detected",
	Symptoms:    "Various symptoms may be present",
	RiskFactors: "Multiple factors may contribute",
	Treatment:   "Consult with dermatologist for proper evaluation",
	Urgency:     "MODERATE - Professional evaluation recommended",
}
