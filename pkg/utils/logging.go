package utils

import (
    "os"
    "path/filepath"

    "github.com/rotisserie/eris"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// LogOptions selects level, encoding and an optional file that receives a copy of every entry.
type LogOptions struct {
    Level  string
    Format string
    File   string
}

// Logger builds a zap logger. When File is set, entries go to both the file and stdout.
func Logger(opts LogOptions) (*zap.Logger, error) {
    lvl := zapcore.InfoLevel
    if opts.Level != "" {
        l, err := zapcore.ParseLevel(opts.Level)
        if err != nil { return nil, eris.Wrap(err, "logger: parse level") }
        lvl = l
    }

    encCfg := zap.NewProductionEncoderConfig()
    encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
    var enc zapcore.Encoder
    if opts.Format == "console" {
        enc = zapcore.NewConsoleEncoder(encCfg)
    } else {
        enc = zapcore.NewJSONEncoder(encCfg)
    }

    consoleCore := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)
    if opts.File == "" {
        return zap.New(consoleCore), nil
    }

    if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
        return nil, eris.Wrap(err, "logger: create log dir")
    }
    f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
    if err != nil {
        return nil, eris.Wrap(err, "logger: open log file")
    }
    fileCore := zapcore.NewCore(enc, zapcore.AddSync(f), lvl)
    return zap.New(zapcore.NewTee(fileCore, consoleCore)), nil
}
