// Package f150 reserves the F-150 slot in the model registry. It emits no
// frames yet.
package f150

import (
	"fmt"

	"vehicle-emulator/internal/logger"
	"vehicle-emulator/internal/model"
)

const Name = "f150"

type Model struct {
	log *logger.Logger
}

func New(l *logger.Logger) *Model {
	return &Model{log: l.WithTag("F150")}
}

func Factory(l *logger.Logger) model.Factory {
	return func(model.Clock) model.Model {
		return New(l)
	}
}

func (m *Model) Name() string { return Name }

func (m *Model) Init(model.Transport) {
	m.log.Infof("F150 model has no frame definitions; bus stays quiet")
}

func (m *Model) Tick(int64) {}

func (m *Model) HandleCommand(tokens []string) error {
	if len(tokens) == 0 {
		return fmt.Errorf("%w: empty command", model.ErrUnsupported)
	}
	m.log.Warnf("Ignoring %s: not implemented for F150", tokens[0])
	return fmt.Errorf("%w: %s", model.ErrUnsupported, tokens[0])
}
