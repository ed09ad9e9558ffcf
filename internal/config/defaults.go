package config

const (
	defaultLogDir             = "~/.local/share/autotex/logs"
	defaultAPIBind            = "127.0.0.1:7607"
	defaultCompilerTimeout    = 30
	defaultCacheDir           = "~/.cache/autotex/annotations"
	defaultCacheRetentionDays = 30
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Compiler: Compiler{
			RequestTimeout: defaultCompilerTimeout,
		},
		Cache: Cache{
			Enabled:       true,
			Dir:           defaultCacheDir,
			RetentionDays: defaultCacheRetentionDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
