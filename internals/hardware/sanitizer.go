// file: internals/hardware/sanitizer.go
package hardware

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

/* =========================================================
   Sanitizer capability
   - satu unit fisik per kiosk, aktivasi blocking sampai selesai
   - tanpa cancel: polling yang timeout harus retry cek status,
     bukan membatalkan siklus yang sedang jalan
========================================================= */

type Sanitizer interface {
	Activate(ctx context.Context, duration time.Duration) error
}

/* =========================================================
   Simulated (tanpa hardware)
========================================================= */

type SimulatedSanitizer struct{}

func (SimulatedSanitizer) Activate(_ context.Context, duration time.Duration) error {
	log.Printf("💡 [SIMULATION] Sanitizer running for %s...", duration)
	time.Sleep(duration)
	log.Println("✅ [SIMULATION] Sanitizer complete")
	return nil
}

/* =========================================================
   GPIO via sysfs (Raspberry Pi)
========================================================= */

type GPIOSanitizer struct {
	Pin int
}

func (g *GPIOSanitizer) Activate(_ context.Context, duration time.Duration) error {
	valuePath := fmt.Sprintf("/sys/class/gpio/gpio%d/value", g.Pin)

	if err := os.WriteFile(valuePath, []byte("1"), 0o644); err != nil {
		return fmt.Errorf("sanitizer on (pin %d): %w", g.Pin, err)
	}
	log.Printf("✅ Sanitizer ON (GPIO Pin %d)", g.Pin)

	time.Sleep(duration)

	if err := os.WriteFile(valuePath, []byte("0"), 0o644); err != nil {
		return fmt.Errorf("sanitizer off (pin %d): %w", g.Pin, err)
	}
	log.Println("🧼 Sanitizer OFF")
	return nil
}

// setup export + direction sekali di awal
func (g *GPIOSanitizer) setup() error {
	base := fmt.Sprintf("/sys/class/gpio/gpio%d", g.Pin)
	if _, err := os.Stat(base); os.IsNotExist(err) {
		if err := os.WriteFile("/sys/class/gpio/export", []byte(fmt.Sprint(g.Pin)), 0o644); err != nil {
			return err
		}
	}
	if err := os.WriteFile(filepath.Join(base, "direction"), []byte("out"), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(base, "value"), []byte("0"), 0o644)
}

/* =========================================================
   Exclusive guard: satu aktivasi in-flight untuk seluruh proses.
   MarkPaid kedua yang menang race akan antri di sini (blocking).
========================================================= */

type Exclusive struct {
	mu    sync.Mutex
	inner Sanitizer
}

func NewExclusive(inner Sanitizer) *Exclusive {
	return &Exclusive{inner: inner}
}

func (e *Exclusive) Activate(ctx context.Context, duration time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.Activate(ctx, duration)
}

// Detect memilih implementasi: GPIO kalau sysfs tersedia, selain itu simulasi.
func Detect(pin int) Sanitizer {
	g := &GPIOSanitizer{Pin: pin}
	if err := g.setup(); err != nil {
		log.Printf("⚠️ GPIO Not Available - Running in Simulation Mode (%v)", err)
		return SimulatedSanitizer{}
	}
	log.Println("✅ GPIO Ready - Running on Raspberry Pi")
	return g
}
