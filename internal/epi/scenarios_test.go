package epi_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/SineadMorris/trainings/internal/epi"
	"github.com/SineadMorris/trainings/internal/integrators"
	"github.com/SineadMorris/trainings/internal/ode"
)

func dailyGrid(days int) []float64 {
	g := make([]float64, days+1)
	for i := range g {
		g[i] = float64(i)
	}
	return g
}

func run(m epi.Model, days int) *ode.Trajectory {
	cfg := ode.Config{MaxStep: 0.25}
	tr, err := ode.Solve(m, integrators.NewRK4(), m.InitialState(), dailyGrid(days), m.Rates(), cfg)
	Expect(err).NotTo(HaveOccurred())
	return tr
}

func peakOf(tr *ode.Trajectory, name string) (float64, float64) {
	series, err := tr.Series(name)
	Expect(err).NotTo(HaveOccurred())
	day, peak := 0, series[0]
	for i, v := range series {
		if v > peak {
			peak, day = v, i
		}
	}
	return tr.Times[day], peak
}

var _ = Describe("epidemic curves", func() {
	Describe("the textbook SIR outbreak", func() {
		var tr *ode.Trajectory

		BeforeEach(func() {
			tr = run(epi.NewSIR(), 150)
		})

		It("conserves the population to reporting precision", func() {
			for _, total := range tr.Totals() {
				Expect(total).To(BeNumerically("~", 10000, 1e-2))
			}
		})

		It("peaks in the second month", func() {
			day, peak := peakOf(tr, "I")
			Expect(day).To(BeNumerically(">=", 20))
			Expect(day).To(BeNumerically("<=", 50))
			Expect(peak).To(BeNumerically("~", 1530, 40))
		})

		It("burns out without exhausting susceptibles", func() {
			final := tr.Final()
			Expect(final[1]).To(BeNumerically("<", 1))
			Expect(final[0]).To(BeNumerically(">", 0))
		})

		It("infects about eighty percent overall", func() {
			attack := tr.Final()[2] / 10000
			Expect(attack).To(BeNumerically("~", 0.797, 0.01))
		})

		It("never lets susceptibles increase", func() {
			s, _ := tr.Series("S")
			for i := 1; i < len(s); i++ {
				Expect(s[i]).To(BeNumerically("<=", s[i-1]))
			}
		})

		It("never lets recovered decline", func() {
			r, _ := tr.Series("R")
			for i := 1; i < len(r); i++ {
				Expect(r[i]).To(BeNumerically(">=", r[i-1]))
			}
		})
	})

	Describe("step control", func() {
		It("agrees between fixed and adaptive stepping", func() {
			m := epi.NewSIR()
			grid := dailyGrid(150)

			fixed, err := ode.Solve(m, integrators.NewRK4(), m.InitialState(), grid, m.Rates(),
				ode.Config{MaxStep: 0.25})
			Expect(err).NotTo(HaveOccurred())

			adaptive, err := ode.Solve(m, integrators.NewRK45(), m.InitialState(), grid, m.Rates(),
				ode.Config{Adaptive: true, ATol: 1e-8, RTol: 1e-8})
			Expect(err).NotTo(HaveOccurred())

			for i := range fixed.States {
				for j := range fixed.States[i] {
					Expect(adaptive.States[i][j]).To(BeNumerically("~", fixed.States[i][j], 1.0))
				}
			}
		})
	})

	Describe("latency", func() {
		It("delays the peak relative to SIR", func() {
			sirDay, _ := peakOf(run(epi.NewSIR(), 200), "I")
			seirDay, _ := peakOf(run(epi.NewSEIR(), 200), "I")
			Expect(seirDay).To(BeNumerically(">", sirDay))
		})
	})

	Describe("vaccination", func() {
		It("lowers the epidemic peak", func() {
			_, sirPeak := peakOf(run(epi.NewSIR(), 200), "I")

			seirv := run(epi.NewSEIRV(), 200)
			i, err := seirv.Series("I")
			Expect(err).NotTo(HaveOccurred())
			iv, err := seirv.Series("Iv")
			Expect(err).NotTo(HaveOccurred())
			peak := 0.0
			for k := range i {
				if tot := i[k] + iv[k]; tot > peak {
					peak = tot
				}
			}

			Expect(peak).To(BeNumerically("<", sirPeak))
		})

		It("still conserves the stratified population", func() {
			tr := run(epi.NewSEIRV(), 200)
			for _, total := range tr.Totals() {
				Expect(total).To(BeNumerically("~", 10000, 1e-2))
			}
		})
	})

	Describe("waning immunity", func() {
		It("settles into an endemic equilibrium", func() {
			tr := run(epi.NewSIRS(), 1000)
			final := tr.Final()
			// At equilibrium S* = N/R0 and I* = (N - S*)/(1 + gamma/xi).
			Expect(final[0]).To(BeNumerically("~", 5000, 250))
			Expect(final[1]).To(BeNumerically("~", 161, 20))
		})
	})
})
