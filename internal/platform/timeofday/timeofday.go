// Package timeofday valida y formatea horas diarias "HH:MM".
package timeofday

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalid = errors.New("time must be HH:MM (00:00-23:59)")

// Parse acepta "9:05" o "09:05" y devuelve la forma canónica "09:05".
func Parse(s string) (string, error) {
	s = strings.TrimSpace(s)
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(m) != 2 || len(h) == 0 || len(h) > 2 {
		return "", ErrInvalid
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 23 {
		return "", ErrInvalid
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return "", ErrInvalid
	}
	return fmt.Sprintf("%02d:%02d", hh, mm), nil
}

// Of devuelve la hora local de t como "HH:MM".
func Of(t time.Time) string {
	return t.Format("15:04")
}
