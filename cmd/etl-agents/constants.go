package etlagents

const (
	rootCommandUse   = "etl-agents"
	rootCommandShort = "Coordinate LLM backends to reorder and reconcile tabular ETL outputs"

	reorderCommandUse   = "reorder"
	reorderCommandShort = "Reorder the target file's rows to match the source row sequence"

	rowDiffCommandUse   = "rowdiff"
	rowDiffCommandShort = "Map target rows to source rows and write a mapping report"

	toolsCommandUse   = "tools"
	toolsCommandShort = "List the registered tool names"

	configCommandUse   = "config"
	configCommandShort = "Print the effective configuration after defaults and validation"

	configFlagName  = "config"
	configFlagUsage = "Path to the root configuration file"

	workingDirFlagName  = "working-dir"
	workingDirFlagUsage = "Working directory holding the input files and receiving artifacts"

	sourceFlagName  = "source"
	sourceFlagUsage = "Source file name (original input order)"

	targetFlagName  = "target"
	targetFlagUsage = "Target file name to reorder or map against the source"

	modelsFlagName  = "models"
	modelsFlagUsage = "Comma-separated backend names overriding the configured list"

	timeoutFlagName  = "timeout"
	timeoutFlagUsage = "Global pipeline timeout override"

	thresholdFlagName  = "threshold"
	thresholdFlagUsage = "Minimum row similarity for a mapped pair, in (0,1]"
)
