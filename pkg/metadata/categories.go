package metadata

// Skill categories assigned to file extensions.
const (
	CategoryProgramming   = "Programming"
	CategoryWeb           = "Web Development"
	CategoryDocumentation = "Documentation"
	CategoryData          = "Data"
	CategoryConfiguration = "Configuration"
	CategoryDatabase      = "Database"
	CategoryDesign        = "Design"
	CategoryScripting     = "Scripting"
	CategoryOther         = "Other"
)

// NoExtension is the extension_stats key for files without a suffix.
const NoExtension = "no_extension"

var extensionCategories = map[string]string{
	".py": CategoryProgramming, ".java": CategoryProgramming, ".go": CategoryProgramming,
	".c": CategoryProgramming, ".h": CategoryProgramming, ".cpp": CategoryProgramming,
	".cc": CategoryProgramming, ".hpp": CategoryProgramming, ".cs": CategoryProgramming,
	".rs": CategoryProgramming, ".rb": CategoryProgramming, ".kt": CategoryProgramming,
	".swift": CategoryProgramming, ".scala": CategoryProgramming, ".r": CategoryProgramming,
	".m": CategoryProgramming, ".php": CategoryProgramming, ".dart": CategoryProgramming,
	".lua": CategoryProgramming, ".hs": CategoryProgramming, ".ex": CategoryProgramming,

	".html": CategoryWeb, ".htm": CategoryWeb, ".css": CategoryWeb, ".scss": CategoryWeb,
	".sass": CategoryWeb, ".less": CategoryWeb, ".js": CategoryWeb, ".jsx": CategoryWeb,
	".ts": CategoryWeb, ".tsx": CategoryWeb, ".vue": CategoryWeb, ".svelte": CategoryWeb,

	".txt": CategoryDocumentation, ".md": CategoryDocumentation, ".markdown": CategoryDocumentation,
	".rst": CategoryDocumentation, ".pdf": CategoryDocumentation, ".docx": CategoryDocumentation,
	".doc": CategoryDocumentation, ".rtf": CategoryDocumentation, ".odt": CategoryDocumentation,
	".tex": CategoryDocumentation, ".log": CategoryDocumentation,

	".csv": CategoryData, ".json": CategoryData, ".xml": CategoryData, ".parquet": CategoryData,
	".xlsx": CategoryData, ".xls": CategoryData, ".tsv": CategoryData, ".ipynb": CategoryData,

	".yaml": CategoryConfiguration, ".yml": CategoryConfiguration, ".toml": CategoryConfiguration,
	".ini": CategoryConfiguration, ".cfg": CategoryConfiguration, ".conf": CategoryConfiguration,
	".env": CategoryConfiguration, ".properties": CategoryConfiguration,

	".sql": CategoryDatabase, ".db": CategoryDatabase, ".sqlite": CategoryDatabase,

	".png": CategoryDesign, ".jpg": CategoryDesign, ".jpeg": CategoryDesign, ".gif": CategoryDesign,
	".svg": CategoryDesign, ".psd": CategoryDesign, ".fig": CategoryDesign, ".sketch": CategoryDesign,

	".sh": CategoryScripting, ".bash": CategoryScripting, ".zsh": CategoryScripting,
	".ps1": CategoryScripting, ".bat": CategoryScripting, ".pl": CategoryScripting,
}

// CategoryOf returns the skill category for an extension.
func CategoryOf(ext string) string {
	if c, ok := extensionCategories[ext]; ok {
		return c
	}

	return CategoryOther
}
