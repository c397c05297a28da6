package commonGo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/multiversx/mx-chain-logger-go/file"
)

// FileLoggingHandler defines the actions that a file logging handler supports
type FileLoggingHandler interface {
	ChangeFileLifeSpan(newDuration time.Duration, newSizeInMB uint64) error
	Close() error
	IsInterfaceNil() bool
}

// AttachFileLogger attaches, if required, a log file
func AttachFileLogger(
	log logger.Logger,
	defaultLogsPath string,
	logFilePrefix string,
	saveLogFile bool,
	workingDir string) (FileLoggingHandler, error) {
	var err error
	var logFile FileLoggingHandler
	if saveLogFile {
		argsFileLogging := file.ArgsFileLogging{
			WorkingDir:      workingDir,
			DefaultLogsPath: defaultLogsPath,
			LogFilePrefix:   logFilePrefix,
		}
		logFile, err = file.NewFileLogging(argsFileLogging)
		if err != nil {
			return nil, fmt.Errorf("%w creating a log file", err)
		}
	}

	err = logger.SetDisplayByteSlice(logger.ToHex)
	log.LogIfError(err)

	return logFile, nil
}

// ReadEnvOverrides returns the values of the provided keys found in the optional env file or in the
// process environment. Process variables take precedence over the file. A missing env file is not an error.
func ReadEnvOverrides(envFile string, keys ...string) (map[string]string, error) {
	fileValues, err := godotenv.Read(envFile)
	if errors.Is(err, fs.ErrNotExist) {
		fileValues = make(map[string]string)
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w while reading %s", err, envFile)
	}

	overrides := make(map[string]string)
	for _, key := range keys {
		if val, found := fileValues[key]; found && len(val) > 0 {
			overrides[key] = val
		}
		if val := os.Getenv(key); len(val) > 0 {
			overrides[key] = val
		}
	}

	return overrides, nil
}
