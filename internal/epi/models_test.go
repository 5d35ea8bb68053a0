package epi_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/SineadMorris/trainings/internal/epi"
	"github.com/SineadMorris/trainings/internal/ode"
)

var _ = Describe("SIR", func() {
	var m *epi.SIR

	BeforeEach(func() {
		m = epi.NewSIR()
	})

	It("seeds the population with the initial cases", func() {
		y := m.InitialState()
		Expect(y).To(HaveLen(3))
		Expect(y[0]).To(Equal(9999.0))
		Expect(y[1]).To(Equal(1.0))
		Expect(y[2]).To(BeZero())
	})

	It("derives rates from the reproduction number", func() {
		rates := m.Rates()
		Expect(rates["gamma"]).To(BeNumerically("~", 1.0/3.0, 1e-12))
		Expect(rates["beta"]).To(BeNumerically("~", 2.0/(3.0*10000.0), 1e-15))
	})

	It("conserves population in the flow", func() {
		dy := m.Derive(0, ode.State{9000, 800, 200}, m.Rates())
		Expect(dy.Sum()).To(BeNumerically("~", 0, 1e-9))
	})

	It("moves mass from susceptible to infectious to recovered", func() {
		dy := m.Derive(0, ode.State{9000, 800, 200}, m.Rates())
		Expect(dy[0]).To(BeNumerically("<", 0))
		Expect(dy[2]).To(BeNumerically(">", 0))
	})

	It("reads rates from the parameter set, not the struct", func() {
		quiet := ode.Params{"beta": 0, "gamma": 0}
		dy := m.Derive(0, m.InitialState(), quiet)
		Expect(dy.Sum()).To(BeZero())
		Expect(dy[0]).To(BeZero())
	})

	It("round-trips inputs through SetParam", func() {
		Expect(m.SetParam("r0", 3.5)).To(Succeed())
		Expect(m.Params()["r0"]).To(Equal(3.5))
	})

	It("rejects unknown parameters", func() {
		Expect(m.SetParam("bogus", 1)).To(MatchError(epi.ErrUnknownParameter))
	})
})

var _ = Describe("SEIR", func() {
	var m *epi.SEIR

	BeforeEach(func() {
		m = epi.NewSEIR()
	})

	It("holds new infections in the latent stage", func() {
		y := m.InitialState()
		dy := m.Derive(0, y, m.Rates())
		Expect(dy[1]).To(BeNumerically(">", 0))
		// The seed case recovers faster than the first latent cohort
		// matures, so prevalence initially dips.
		Expect(dy[2]).To(BeNumerically("<", 0))
	})

	It("matures latent cases at rate sigma", func() {
		rates := m.Rates()
		Expect(rates["sigma"]).To(BeNumerically("~", 0.5, 1e-12))
		dy := m.Derive(0, ode.State{9000, 600, 300, 100}, rates)
		onset := 0.5 * 600
		recovery := 300.0 / 3.0
		Expect(dy[2]).To(BeNumerically("~", onset-recovery, 1e-9))
	})

	It("conserves population in the flow", func() {
		dy := m.Derive(0, ode.State{9000, 600, 300, 100}, m.Rates())
		Expect(dy.Sum()).To(BeNumerically("~", 0, 1e-9))
	})
})

var _ = Describe("SIRS", func() {
	var m *epi.SIRS

	BeforeEach(func() {
		m = epi.NewSIRS()
	})

	It("returns recovered mass to the susceptible pool", func() {
		dy := m.Derive(0, ode.State{5000, 0, 5000}, m.Rates())
		waning := 5000.0 / 90.0
		Expect(dy[0]).To(BeNumerically("~", waning, 1e-9))
		Expect(dy[2]).To(BeNumerically("~", -waning, 1e-9))
	})

	It("reduces to SIR when immunity is permanent", func() {
		sir := epi.NewSIR()
		y := ode.State{9000, 800, 200}
		rates := m.Rates()
		rates["xi"] = 0
		dy := m.Derive(0, y, rates)
		dySIR := sir.Derive(0, y, sir.Rates())
		for i := range dy {
			Expect(dy[i]).To(BeNumerically("~", dySIR[i], 1e-9))
		}
	})
})

var _ = Describe("SEIRV", func() {
	var m *epi.SEIRV

	BeforeEach(func() {
		m = epi.NewSEIRV()
	})

	It("starts everyone unvaccinated", func() {
		y := m.InitialState()
		Expect(y).To(HaveLen(8))
		Expect(y[0]).To(Equal(9999.0))
		Expect(y[2]).To(Equal(1.0))
		for _, i := range []int{1, 3, 4, 5, 6, 7} {
			Expect(y[i]).To(BeZero())
		}
	})

	It("drains susceptibles into the vaccinated stratum", func() {
		y := m.InitialState()
		dy := m.Derive(0, y, m.Rates())
		Expect(dy[4]).To(BeNumerically("~", 0.01*y[0], 1e-6))
	})

	It("conserves population in the flow", func() {
		y := ode.State{5000, 200, 300, 500, 3000, 100, 150, 750}
		dy := m.Derive(0, y, m.Rates())
		Expect(dy.Sum()).To(BeNumerically("~", 0, 1e-9))
	})

	It("counts vaccinated cases in the force of infection", func() {
		rates := m.Rates()
		y := ode.State{5000, 0, 0, 0, 0, 0, 100, 0}
		dy := m.Derive(0, y, rates)
		// Only Iv is infectious here; unvaccinated susceptibles still
		// get exposed.
		Expect(dy[1]).To(BeNumerically(">", 0))
	})

	It("scales the vaccinated force of infection by 1-f", func() {
		rates := m.Rates()
		y := ode.State{1000, 0, 100, 0, 1000, 0, 0, 0}
		dy := m.Derive(0, y, rates)
		force := rates["beta"] * 100
		Expect(dy[1]).To(BeNumerically("~", force*1000, 1e-9))
		Expect(dy[5]).To(BeNumerically("~", (1-0.4)*force*1000, 1e-9))
	})

	It("blocks vaccinated infection entirely when f=1", func() {
		Expect(m.SetParam("protection", 1)).To(Succeed())
		y := ode.State{0, 0, 100, 0, 5000, 0, 0, 0}
		dy := m.Derive(0, y, m.Rates())
		Expect(dy[5]).To(BeZero())
	})
})

var _ = Describe("compartment classification", func() {
	vars := []string{"S", "E", "I", "R", "Sv", "Ev", "Iv", "Rv"}

	It("groups vaccinated strata with their base compartments", func() {
		Expect(epi.SusceptibleVars(vars)).To(Equal([]string{"S", "Sv"}))
		Expect(epi.InfectiousVars(vars)).To(Equal([]string{"I", "Iv"}))
		Expect(epi.RecoveredVars(vars)).To(Equal([]string{"R", "Rv"}))
	})

	It("leaves latent compartments out of all three groups", func() {
		all := append(epi.SusceptibleVars(vars), epi.InfectiousVars(vars)...)
		all = append(all, epi.RecoveredVars(vars)...)
		Expect(all).NotTo(ContainElement("E"))
		Expect(all).NotTo(ContainElement("Ev"))
	})
})
