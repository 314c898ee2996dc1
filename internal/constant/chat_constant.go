package constant

const (
	// TitlePromptTemplate takes the first user message as its only argument.
	TitlePromptTemplate = `Generate a very short chat title (max 5 words) from this message: "%s". Return ONLY the title, no quotes or explanation.`

	// TitleMaxTokens leaves room for the reasoning tokens that thinking
	// models bill against the output budget.
	TitleMaxTokens = 256
	TitleMaxRunes  = 100
)
