package hardware

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"vehicle-emulator/internal/logger"
	"vehicle-emulator/internal/types"

	"github.com/warthog618/go-gpiocdev"
)

// ButtonCallback is invoked from the gpiocdev event goroutine.
type ButtonCallback func(code types.ButtonCode)

// ButtonPanel turns falling edges on pulled-up GPIO lines into button
// presses. One line per button; lines are active-low.
type ButtonPanel struct {
	chipName string
	lines    map[types.ButtonCode]int
	byOffset map[int]types.ButtonCode
	callback ButtonCallback
	logger   *logger.Logger

	mu    sync.Mutex
	chip  *gpiocdev.Chip
	reqs  map[types.ButtonCode]*gpiocdev.Line
	alive bool
}

func NewButtonPanel(chipName string, lines map[types.ButtonCode]int, l *logger.Logger, callback ButtonCallback) (*ButtonPanel, error) {
	byOffset := make(map[int]types.ButtonCode, len(lines))
	for code, offset := range lines {
		if code == types.ButtonNone {
			return nil, fmt.Errorf("button line %d has no button", offset)
		}
		if offset < 0 {
			return nil, fmt.Errorf("button %s: invalid line offset %d", code, offset)
		}
		if other, dup := byOffset[offset]; dup {
			return nil, fmt.Errorf("line %d assigned to both %s and %s", offset, other, code)
		}
		byOffset[offset] = code
	}
	return &ButtonPanel{
		chipName: chipName,
		lines:    lines,
		byOffset: byOffset,
		callback: callback,
		logger:   l,
		reqs:     make(map[types.ButtonCode]*gpiocdev.Line),
	}, nil
}

// ParseButtonLines converts configured button names (UP, DOWN, ...) to codes.
func ParseButtonLines(named map[string]int) (map[types.ButtonCode]int, error) {
	lines := make(map[types.ButtonCode]int, len(named))
	for name, offset := range named {
		code, ok := types.ParseButton(strings.ToUpper(name))
		if !ok {
			return nil, fmt.Errorf("unknown button %q", name)
		}
		lines[code] = offset
	}
	return lines, nil
}

func (p *ButtonPanel) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.Infof("Initializing button panel on %s", p.chipName)

	chip, err := gpiocdev.NewChip(p.chipName, gpiocdev.WithConsumer(gpioConsumer))
	if err != nil {
		return fmt.Errorf("failed to open GPIO chip %s: %w", p.chipName, err)
	}
	p.chip = chip

	codes := make([]types.ButtonCode, 0, len(p.lines))
	for code := range p.lines {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	for _, code := range codes {
		offset := p.lines[code]
		line, err := chip.RequestLine(offset,
			gpiocdev.AsInput,
			gpiocdev.WithPullUp,
			gpiocdev.WithFallingEdge,
			gpiocdev.WithDebounce(buttonDebounce),
			gpiocdev.WithEventHandler(p.handleEvent))
		if err != nil {
			p.closeLocked()
			return fmt.Errorf("failed to request GPIO line %d for %s: %w", offset, code, err)
		}
		p.reqs[code] = line
		p.logger.Infof("Configured button %s: chip=%s, line=%d", code, p.chipName, offset)
	}
	p.alive = true
	return nil
}

func (p *ButtonPanel) handleEvent(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventFallingEdge {
		return
	}
	code, ok := p.byOffset[evt.Offset]
	if !ok {
		p.logger.Warnf("Event on unmapped line %d", evt.Offset)
		return
	}
	p.logger.Debugf("Button %s pressed (line %d)", code, evt.Offset)
	if p.callback != nil {
		p.callback(code)
	}
}

func (p *ButtonPanel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *ButtonPanel) closeLocked() {
	for code, line := range p.reqs {
		line.Close()
		p.logger.Debugf("Closed GPIO line for %s", code)
		delete(p.reqs, code)
	}
	if p.chip != nil {
		p.chip.Close()
		p.chip = nil
	}
	if p.alive {
		p.logger.Infof("Button panel closed")
	}
	p.alive = false
}
