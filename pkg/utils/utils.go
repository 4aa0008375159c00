package utils

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func NewUUID() uuid.UUID {
	return uuid.New()
}

func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// VitalsGenerator генерит показатели вокруг заданной нормы.
// Не потокобезопасен, у каждой горутины должен быть свой.
type VitalsGenerator struct {
	rnd *rand.Rand
}

func NewVitalsGenerator(seed int64) *VitalsGenerator {
	return &VitalsGenerator{rnd: rand.New(rand.NewSource(seed))}
}

// BloodPressure давление в пределах ±spread от нормы, не ниже 1
func (g *VitalsGenerator) BloodPressure(upper, lower, spread int) (int, int) {
	return clampPositive(upper + g.jitter(spread)), clampPositive(lower + g.jitter(spread))
}

// Temperature температура в пределах ±spread от нормы, с точностью до сотых
func (g *VitalsGenerator) Temperature(normal, spread decimal.Decimal) decimal.Decimal {
	// доля от -1 до 1
	k := decimal.NewFromFloat(g.rnd.Float64()*2 - 1)
	return normal.Add(spread.Mul(k)).Round(2)
}

func (g *VitalsGenerator) jitter(spread int) int {
	if spread <= 0 {
		return 0
	}
	return g.rnd.Intn(2*spread+1) - spread
}

func clampPositive(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
