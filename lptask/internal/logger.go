package lptask_internal

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	LOGGER_CONFIG_USE_JSON_DEFAULT                = false
	LOGGER_CONFIG_LEVEL_DEFAULT                   = "info"
	LOGGER_CONFIG_DISABLE_SRC_FILE_DEFAULT        = false
	LOGGER_CONFIG_LOG_FILE_DEFAULT                = "" // i.e. stderr
	LOGGER_CONFIG_LOG_FILE_MAX_SIZE_MB_DEFAULT    = 10
	LOGGER_CONFIG_LOG_FILE_MAX_BACKUP_NUM_DEFAULT = 1

	LOGGER_DEFAULT_LEVEL    = logrus.InfoLevel
	LOGGER_TIMESTAMP_FORMAT = time.RFC3339
	// Extra field added for component sub loggers:
	LOGGER_COMPONENT_FIELD_NAME = "comp"
)

// CollectableLogger wraps logrus.Logger with the small extra surface the test
// log collector needs (see lptask/testutils/log_collector.go).
type CollectableLogger struct {
	logrus.Logger
	// Cached condition of being enabled for debug, so hot paths (e.g. the
	// main loop) can skip building a debug line without a level check first.
	IsEnabledForDebug bool
}

func (log *CollectableLogger) GetOutput() io.Writer {
	return log.Out
}

func (log *CollectableLogger) GetLevel() any {
	return log.Logger.GetLevel()
}

func (log *CollectableLogger) SetLevel(level any) {
	if level, ok := level.(logrus.Level); ok {
		log.Logger.SetLevel(level)
		log.IsEnabledForDebug = log.IsLevelEnabled(logrus.DebugLevel)
	}
}

type LoggerConfig struct {
	UseJson             bool   `yaml:"use_json"`
	Level               string `yaml:"level"`
	DisableSrcFile      bool   `yaml:"disable_src_file"`
	LogFile             string `yaml:"log_file"`
	LogFileMaxSizeMB    int    `yaml:"log_file_max_size_mb"`
	LogFileMaxBackupNum int    `yaml:"log_file_max_backup_num"`
}

func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		UseJson:             LOGGER_CONFIG_USE_JSON_DEFAULT,
		Level:               LOGGER_CONFIG_LEVEL_DEFAULT,
		DisableSrcFile:      LOGGER_CONFIG_DISABLE_SRC_FILE_DEFAULT,
		LogFile:             LOGGER_CONFIG_LOG_FILE_DEFAULT,
		LogFileMaxSizeMB:    LOGGER_CONFIG_LOG_FILE_MAX_SIZE_MB_DEFAULT,
		LogFileMaxBackupNum: LOGGER_CONFIG_LOG_FILE_MAX_BACKUP_NUM_DEFAULT,
	}
}

// ModuleDirPathCache strips the module's own directory prefix from logged
// file paths so log lines read "lptask/internal/scheduler.go:42" instead of
// an absolute path.
type ModuleDirPathCache struct {
	prefixList []string
	keepNDirs  int
}

func (p *ModuleDirPathCache) addPrefix(prefix string) {
	i := len(p.prefixList) - 1
	for i >= 0 {
		if p.prefixList[i] == prefix {
			return
		}
		if len(p.prefixList[i]) > len(prefix) {
			break
		}
		i--
	}
	i++
	if i >= len(p.prefixList) {
		p.prefixList = append(p.prefixList, prefix)
	} else {
		p.prefixList = append(p.prefixList[:i+1], p.prefixList[i:]...)
		p.prefixList[i] = prefix
	}
}

func (p *ModuleDirPathCache) stripPrefix(filePath string) string {
	for _, prefix := range p.prefixList {
		if strings.HasPrefix(filePath, prefix) {
			return filePath[len(prefix):]
		}
	}
	pathComp := strings.Split(filePath, "/")
	keepNComps := p.keepNDirs + 1
	if keepNComps < 1 {
		keepNComps = 1
	}
	if keepNComps < len(pathComp) {
		filePath = path.Join(pathComp[len(pathComp)-keepNComps:]...)
	}
	return filePath
}

var moduleDirPathCache = &ModuleDirPathCache{
	prefixList: []string{},
	keepNDirs:  1,
}

// AddCallerSrcPathPrefixToLogger registers the caller's own source directory,
// upNDirs levels up, as a prefix to strip from logged file paths.
func AddCallerSrcPathPrefixToLogger(upNDirs int, skip int) error {
	skip++ // skip this function
	_, file, _, ok := runtime.Caller(skip)
	if !ok {
		return fmt.Errorf("cannot determine source root: runtime.Caller(%d) failed", skip)
	}
	prefix := path.Dir(file)
	for i := 0; i < upNDirs; i++ {
		prefix = path.Dir(prefix)
	}
	if prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}
	moduleDirPathCache.addPrefix(prefix)
	return nil
}

type logFuncFilePair struct {
	function string
	file     string
}

type logFuncFileCache struct {
	mu            sync.Mutex
	funcFileCache map[uintptr]*logFuncFilePair
}

func (c *logFuncFileCache) LogCallerPrettyfier(f *runtime.Frame) (function string, file string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	funcFile := c.funcFileCache[f.PC]
	if funcFile == nil {
		funcFile = &logFuncFilePair{
			function: "",
			file:     fmt.Sprintf("%s:%d", moduleDirPathCache.stripPrefix(f.File), f.Line),
		}
		c.funcFileCache[f.PC] = funcFile
	}
	return funcFile.function, funcFile.file
}

var logFunctionFileCache = &logFuncFileCache{
	funcFileCache: make(map[uintptr]*logFuncFilePair),
}

var LogFieldKeySortOrder = map[string]int{
	logrus.FieldKeyTime:         -5,
	logrus.FieldKeyLevel:        -4,
	LOGGER_COMPONENT_FIELD_NAME: -3,
	logrus.FieldKeyFile:         -2,
	logrus.FieldKeyFunc:         -1,
	logrus.FieldKeyMsg:          1,
}

type logFieldKeySortable struct {
	keys []string
}

func (d *logFieldKeySortable) Len() int      { return len(d.keys) }
func (d *logFieldKeySortable) Swap(i, j int) { d.keys[i], d.keys[j] = d.keys[j], d.keys[i] }
func (d *logFieldKeySortable) Less(i, j int) bool {
	keyI, keyJ := d.keys[i], d.keys[j]
	orderI, orderJ := LogFieldKeySortOrder[keyI], LogFieldKeySortOrder[keyJ]
	if orderI != 0 || orderJ != 0 {
		return orderI < orderJ
	}
	return strings.Compare(keyI, keyJ) == -1
}

func LogSortFieldKeys(keys []string) {
	sort.Sort(&logFieldKeySortable{keys})
}

var LogTextFormatter = &logrus.TextFormatter{
	DisableColors:    true,
	FullTimestamp:    true,
	TimestampFormat:  LOGGER_TIMESTAMP_FORMAT,
	CallerPrettyfier: logFunctionFileCache.LogCallerPrettyfier,
	DisableSorting:   false,
	SortingFunc:      LogSortFieldKeys,
}

var LogJsonFormatter = &logrus.JSONFormatter{
	TimestampFormat:  LOGGER_TIMESTAMP_FORMAT,
	CallerPrettyfier: logFunctionFileCache.LogCallerPrettyfier,
}

var RootLogger = &CollectableLogger{
	Logger: logrus.Logger{
		Out:          os.Stderr,
		Formatter:    LogTextFormatter,
		Level:        LOGGER_DEFAULT_LEVEL,
		ReportCaller: true,
	},
}

// GetRootLogger exposes the root logger for tests (see
// lptask/testutils/log_collector.go); its concrete type is otherwise
// internal.
func GetRootLogger() *CollectableLogger { return RootLogger }

func init() {
	// The module root is 2 dirs up from this file's directory.
	AddCallerSrcPathPrefixToLogger(2, 0)
}

// SetLogger applies a LoggerConfig to the root logger: level, format and
// destination (stderr, stdout or a rotated file via lumberjack).
func SetLogger(cfg *LoggerConfig) error {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}

	if cfg.Level != "" {
		level, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
		RootLogger.SetLevel(level)
	}

	if cfg.UseJson {
		RootLogger.SetFormatter(LogJsonFormatter)
	} else {
		RootLogger.SetFormatter(LogTextFormatter)
	}

	RootLogger.SetReportCaller(!cfg.DisableSrcFile)

	switch logFile := cfg.LogFile; logFile {
	case "stderr":
		RootLogger.SetOutput(os.Stderr)
	case "stdout":
		RootLogger.SetOutput(os.Stdout)
	case "":
	default:
		logDir := path.Dir(cfg.LogFile)
		if _, err := os.Stat(logDir); err != nil {
			if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
				return err
			}
		}
		_, statErr := os.Stat(cfg.LogFile)
		forceRotate := statErr == nil
		lj := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogFileMaxSizeMB,
			MaxBackups: cfg.LogFileMaxBackupNum,
		}
		if forceRotate {
			if err := lj.Rotate(); err != nil {
				return err
			}
		}
		RootLogger.SetOutput(lj)
	}

	return nil
}

// NewCompLogger returns a sub-logger tagging every entry with the component
// name, e.g. NewCompLogger("scheduler"), NewCompLogger("pool").
func NewCompLogger(compName string) *logrus.Entry {
	return RootLogger.WithField(LOGGER_COMPONENT_FIELD_NAME, compName)
}
