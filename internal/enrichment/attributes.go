package enrichment

type attributeKind int

const (
	kindText attributeKind = iota
	kindList
	kindLabel
)

type attribute struct {
	field       string
	kind        attributeKind
	instruction string
}

const jsonOnly = " Respond with JSON only."

// Order matters: date of birth feeds the death check that follows the loop.
var personAttributes = []attribute{
	{field: "country", kind: kindText, instruction: `Give the country of birth of the named person as {"country": "<country>"}.` + jsonOnly},
	{field: "date_of_birth", kind: kindText, instruction: `Give the date of birth of the named person as {"date_of_birth": "YYYY-MM-DD"}. Use an empty string when unknown.` + jsonOnly},
	{field: "professions", kind: kindList, instruction: `List the professions of the named person in the film industry as {"professions": ["..."]}.` + jsonOnly},
	{field: "ethnicity", kind: kindLabel, instruction: `Give the publicly documented ethnicity of the named person as {"ethnicity": "<ethnicity>"}. Use an empty string when unknown.` + jsonOnly},
	{field: "eye_color", kind: kindLabel, instruction: `Give the eye color of the named person as {"eye_color": "<color>"}.` + jsonOnly},
	{field: "hair_color", kind: kindLabel, instruction: `Give the natural hair color of the named person as {"hair_color": "<color>"}.` + jsonOnly},
	{field: "height", kind: kindText, instruction: `Give the height of the named person in feet and centimetres as {"height": "5' 10\" (178cm)"}.` + jsonOnly},
	{field: "body_type", kind: kindLabel, instruction: `Describe the build of the named person in one or two words as {"body_type": "<build>"}.` + jsonOnly},
	{field: "intro", kind: kindText, instruction: `Write a two sentence introduction of the named person as {"intro": "<text>"}.` + jsonOnly},
	{field: "seo_keywords", kind: kindList, instruction: `List up to ten search keywords for the named person as {"seo_keywords": ["..."]}.` + jsonOnly},
}

var genderAttribute = attribute{
	field:       "gender",
	instruction: `Give the gender of the named person as {"gender": <code>} where 0 is not specified, 1 is female, 2 is male and 3 is non-binary.` + jsonOnly,
}

var biographyAttribute = attribute{
	field:       "biography",
	kind:        kindText,
	instruction: `Write a factual biography of the named person of three to five paragraphs as {"biography": "<text>"}.` + jsonOnly,
}

const deathCheckInstruction = `State whether the named person has died as {"deceased": true|false, "date_of_death": "YYYY-MM-DD"}. Answer false unless the death is publicly confirmed.` + jsonOnly
