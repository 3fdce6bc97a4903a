package logloader

const (
	// DefaultLoggerName is used when an Interpreter is created without a name.
	DefaultLoggerName = "default"
	// EnvVar selects the runtime environment.
	EnvVar = "APP_ENV"

	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTesting     = "testing"

	// CategoryFieldName is the field child loggers tag their records with.
	CategoryFieldName = "category"

	defaultLevel = "info"
	emptyString  = ""
)

const (
	errMsgNilSpec         = "Logger specification is nil."
	errMsgSpecInvalid     = "Logger specification is invalid."
	errMsgOptionsInvalid  = "Options are invalid."
	errMsgReadFailed      = "Reading the configuration document failed."
	errMsgParseFailed     = "Parsing the configuration document failed."
	errMsgDecodeFailed    = "Decoding the configuration document failed."
	errMsgUnknownLevel    = "Level is not defined in the level table."
	errMsgUnknownColor    = "Color is not recognised."
	errMsgEmptyTemplate   = "Template is empty."
	errMsgEnvFileFailed   = "Reading the environment file failed."
	errMsgLoggerNotExists = "No logger registered under this name."
	errMsgNotInteger      = "Number must be a whole number."
)
