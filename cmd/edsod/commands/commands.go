// Package commands implements the edsod CLI commands.
package commands

import (
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/canopen-tools/edsod/internal/config"
	"github.com/canopen-tools/edsod/pkg/eds"
	"github.com/canopen-tools/edsod/pkg/log"
	"github.com/canopen-tools/edsod/pkg/od"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitValidation   = 2
)

// commonFlags are accepted by every command that imports a file.
type commonFlags struct {
	ConfigPath string
	NodeID     uint
	Verbose    bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigPath, "config", config.DefaultPath(), "Config file")
	fs.UintVar(&c.NodeID, "node-id", 0, "Node ID for $NODEID values (1-127)")
	fs.BoolVar(&c.Verbose, "v", false, "Print import diagnostics at the configured log level to stderr")
}

// session is the loaded configuration plus the diagnostics sinks of one
// command run.
type session struct {
	cfg     *config.Config
	logger  log.Logger
	capture *log.FileLogger
}

// open loads the config and wires the diagnostics loggers. extra receives
// every event in addition to the configured sinks.
func (c *commonFlags) open(stderr io.Writer, extra ...log.Logger) (*session, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	if c.NodeID > 127 {
		return nil, fmt.Errorf("%w: %d", eds.ErrInvalidNodeID, c.NodeID)
	}

	s := &session{cfg: cfg}
	loggers := append([]log.Logger(nil), extra...)
	if c.Verbose {
		handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, log.AtLeast(cfg.Level(), log.NewSlogAdapter(slog.New(handler))))
	}
	if cfg.Diagnostics != "" {
		fl, err := log.NewFileLogger(cfg.Diagnostics)
		if err != nil {
			return nil, fmt.Errorf("open diagnostics file: %w", err)
		}
		s.capture = fl
		loggers = append(loggers, fl)
	}
	s.logger = log.NewMultiLogger(loggers...)
	return s, nil
}

func (s *session) importer(nodeID uint) *eds.Importer {
	return s.cfg.Importer(uint8(nodeID), s.logger)
}

func (s *session) importFile(path string, nodeID uint) (*od.ObjectDictionary, error) {
	return s.importer(nodeID).ImportFile(path)
}

func (s *session) close() {
	if s.capture != nil {
		s.capture.Close()
	}
}
