// Package retrypolicy computes redelivery backoff. The delay-level table
// mirrors the broker's message delay configuration; nack invisibility grows
// exponentially and is capped.
package retrypolicy

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Policy derives invisibility durations for nacked messages and delay levels
// for messages sent back to the retry topic.
type Policy struct {
	levels []time.Duration

	initialInvisible time.Duration
	maxInvisible     time.Duration
	multiplier       float64
}

// Defaults for the nack backoff curve.
const (
	DefaultInitialInvisible = 5 * time.Second
	DefaultMaxInvisible     = 2 * time.Hour
	DefaultMultiplier       = 2.0
)

// New parses the delay-level table ("1s 5s 10s 30s 1m 2m ...") and binds the
// backoff parameters. Zero-valued parameters fall back to the defaults.
func New(delayLevels string, initial, max time.Duration, multiplier float64) (*Policy, error) {
	levels, err := ParseDelayLevels(delayLevels)
	if err != nil {
		return nil, err
	}
	p := &Policy{
		levels:           levels,
		initialInvisible: initial,
		maxInvisible:     max,
		multiplier:       multiplier,
	}
	if p.initialInvisible <= 0 {
		p.initialInvisible = DefaultInitialInvisible
	}
	if p.maxInvisible <= 0 {
		p.maxInvisible = DefaultMaxInvisible
	}
	if p.multiplier <= 1 {
		p.multiplier = DefaultMultiplier
	}
	return p, nil
}

// ParseDelayLevels parses a space-separated duration table. Units: s, m, h, d.
func ParseDelayLevels(s string) ([]time.Duration, error) {
	var levels []time.Duration
	for _, tok := range strings.Fields(s) {
		unit := tok[len(tok)-1]
		value, err := strconv.Atoi(tok[:len(tok)-1])
		if err != nil {
			return nil, fmt.Errorf("retrypolicy: bad delay level %q", tok)
		}
		var d time.Duration
		switch unit {
		case 's':
			d = time.Duration(value) * time.Second
		case 'm':
			d = time.Duration(value) * time.Minute
		case 'h':
			d = time.Duration(value) * time.Hour
		case 'd':
			d = time.Duration(value) * 24 * time.Hour
		default:
			return nil, fmt.Errorf("retrypolicy: bad delay level %q", tok)
		}
		levels = append(levels, d)
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("retrypolicy: empty delay level table")
	}
	return levels, nil
}

// NackInvisible returns the invisibility to apply on the nth redelivery:
// min(max, initial * multiplier^n).
func (p *Policy) NackInvisible(reconsumeTimes int32) time.Duration {
	if reconsumeTimes < 0 {
		reconsumeTimes = 0
	}
	backoff := float64(p.initialInvisible) * math.Pow(p.multiplier, float64(reconsumeTimes))
	if backoff > float64(p.maxInvisible) || math.IsInf(backoff, 1) {
		return p.maxInvisible
	}
	return time.Duration(backoff)
}

// DelayLevel maps a redelivery attempt to the broker's delay-level table,
// clamped to the last level. Levels are 1-based on the wire.
func (p *Policy) DelayLevel(reconsumeTimes int32) int32 {
	level := int(reconsumeTimes) + 1
	if level > len(p.levels) {
		level = len(p.levels)
	}
	if level < 1 {
		level = 1
	}
	return int32(level)
}

// LevelDuration returns the delay behind a 1-based level.
func (p *Policy) LevelDuration(level int32) time.Duration {
	if level < 1 {
		level = 1
	}
	if int(level) > len(p.levels) {
		level = int32(len(p.levels))
	}
	return p.levels[level-1]
}
