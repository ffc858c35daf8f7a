package cmd

// DefaultProjectConfigFilename describes the default config filename for a given project folder.
const DefaultProjectConfigFilename = "tokengas.json"

// DefaultEnvironmentFilename describes the file environment variables are loaded from, if it exists.
const DefaultEnvironmentFilename = ".env"

// DefaultCompilationPlatform describes the default compilation platform to use if one is not provided
const DefaultCompilationPlatform = "solc"

// Output formats of the profile command.
const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
)

// NoResultsMessage is printed when no contracts were profiled.
const NoResultsMessage = "No results to display"
