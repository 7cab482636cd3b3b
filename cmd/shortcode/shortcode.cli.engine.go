package main

import (
	"context"
	"io"

	"github.com/itsatony/go-shortcode"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// loadedEngine is an engine built from a settings file together with the
// storage it renders from.
type loadedEngine struct {
	settings *shortcode.Settings
	engine   *shortcode.Engine
	storage  shortcode.TemplateStorage
}

// Close releases the template storage.
func (l *loadedEngine) Close() error {
	if l.storage == nil {
		return nil
	}
	return l.storage.Close()
}

// loadEngine reads the settings file and builds an engine from it. When
// verbose is set, engine logs go to stderr.
func loadEngine(ctx context.Context, settingsPath string, verbose bool, stderr io.Writer) (*loadedEngine, error) {
	settings, err := shortcode.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	engine, storage, err := settings.NewEngine(ctx, shortcode.WithLogger(newLogger(verbose, stderr)))
	if err != nil {
		return nil, err
	}

	return &loadedEngine{settings: settings, engine: engine, storage: storage}, nil
}

// newLogger returns a console logger writing to w, or a no-op logger.
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}
