package mindmap

// Config holds mind-map generation settings.
type Config struct {
	// Chapters is the number of depth-1 nodes asked for by BuildRoot.
	Chapters int

	// Points is the number of children asked for by Deepen.
	Points int

	// RootContextChars and DeepenContextChars cap the document prefix sent
	// with each request.
	RootContextChars   int
	DeepenContextChars int

	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the settings used by the app.
func DefaultConfig() Config {
	return Config{
		Chapters:           5,
		Points:             4,
		RootContextChars:   150000,
		DeepenContextChars: 80000,
		MaxTokens:          2048,
		Temperature:        0.1,
	}
}
