package config

const (
	defaultArtifactsRoot          = "artifacts"
	defaultStateDirName           = ".summarizer"
	defaultIngestionRootDir       = "artifacts/data_ingestion"
	defaultLocalDataFile          = "artifacts/data_ingestion/data.zip"
	defaultUnzipDir               = "artifacts/data_ingestion"
	defaultDownloadTimeoutSeconds = 300
	defaultValidationRootDir      = "artifacts/data_validation"
	defaultValidationDataDir      = "artifacts/data_ingestion/samsum_dataset"
	defaultValidationStatusFile   = "artifacts/data_validation/status.txt"
	defaultTransformationRootDir  = "artifacts/data_transformation"
	defaultTransformationDataPath = "artifacts/data_ingestion/samsum_dataset"
	defaultSplitPattern           = "*.jsonl"
	defaultMaxInputWords          = 1024
	defaultMaxTargetWords         = 128
	defaultLogLevel               = "info"
	defaultLogFormat              = "console"
	defaultLogDir                 = "logs"
	defaultLogRetentionDays       = 30
	defaultMetricsFileName        = "metrics.prom"
	defaultNtfyRequestTimeout     = 10
)

var defaultRequiredFiles = []string{"train", "test", "validation"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		ArtifactsRoot: defaultArtifactsRoot,
		DataIngestion: DataIngestion{
			RootDir:                defaultIngestionRootDir,
			LocalDataFile:          defaultLocalDataFile,
			UnzipDir:               defaultUnzipDir,
			DownloadTimeoutSeconds: defaultDownloadTimeoutSeconds,
		},
		DataValidation: DataValidation{
			RootDir:          defaultValidationRootDir,
			DataDir:          defaultValidationDataDir,
			StatusFile:       defaultValidationStatusFile,
			AllRequiredFiles: append([]string(nil), defaultRequiredFiles...),
		},
		DataTransformation: DataTransformation{
			RootDir:        defaultTransformationRootDir,
			DataPath:       defaultTransformationDataPath,
			SplitPattern:   defaultSplitPattern,
			MaxInputWords:  defaultMaxInputWords,
			MaxTargetWords: defaultMaxTargetWords,
		},
		Logging: Logging{
			Level:         defaultLogLevel,
			Format:        defaultLogFormat,
			Dir:           defaultLogDir,
			RetentionDays: defaultLogRetentionDays,
		},
		Metrics: Metrics{Enabled: true},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyRequestTimeout,
			NotifyOnSuccess:       true,
		},
	}
}
