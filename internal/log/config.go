package log

// LoggerConfig configures the process logger.
type LoggerConfig struct {
	Level     string           `mapstructure:"level"`   // trace / debug / info / warn / error
	Pattern   string           `mapstructure:"pattern"` // see formatter.Format
	Time      string           `mapstructure:"time"`    // Go time layout for %time
	Appenders []AppenderConfig `mapstructure:"appenders"`
}

// AppenderConfig selects an output. Type is "console" or "file";
// File is only read for the file appender.
type AppenderConfig struct {
	Type string          `mapstructure:"type"`
	File FileAppenderOpt `mapstructure:"file"`
}

const (
	DefaultPattern = "%time [%level] %msg %field\n"
	DefaultTime    = "2006-01-02 15:04:05.000"
)
