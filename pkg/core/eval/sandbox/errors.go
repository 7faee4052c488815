package sandbox

// RunnerError is the one exported error type in the eval core: tool-runner
// failures need a stable, machine-matchable Code distinct from the
// human-readable Message, which plain fmt.Errorf wrapping cannot expose
// without a sentinel per code.
type RunnerError struct {
	Code    string
	Message string
}

func (e *RunnerError) Error() string {
	return e.Code + ": " + e.Message
}

// Error codes per the tool-runner error taxonomy.
const (
	CodeInvalidCommand         = "INVALID_COMMAND"
	CodeCommandNotAllowlisted  = "COMMAND_NOT_ALLOWLISTED"
	CodeToolTimeout            = "TOOL_TIMEOUT"
	CodeToolProcessError       = "TOOL_PROCESS_ERROR"
	CodeToolEmptyResponse      = "TOOL_EMPTY_RESPONSE"
	CodeToolInvalidResponse    = "TOOL_INVALID_RESPONSE"
	CodeToolInputError         = "TOOL_INPUT_ERROR"
	CodeToolExecutionError     = "TOOL_EXECUTION_ERROR"
	CodeToolsModuleNotFound    = "TOOLS_MODULE_NOT_FOUND"
	CodeHandlersMissing        = "HANDLERS_MISSING"
	CodeToolNotFound           = "TOOL_NOT_FOUND"
	CodeInvalidWorkerArgs      = "INVALID_WORKER_ARGS"
)

func newRunnerError(code, message string) *RunnerError {
	return &RunnerError{Code: code, Message: message}
}
