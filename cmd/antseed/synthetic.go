package main

import (
	"math/rand"
	"strconv"
	"strings"
)

// colonyParams are the ant colony settings the test server stores with every run.
type colonyParams struct {
	alpha, beta, q, rho float64
	countSubjects       int
	maxIteration        int
	maxAnts             int
}

func (c colonyParams) withDefaults() colonyParams {
	if c.alpha == 0 {
		c.alpha = 1
	}
	if c.beta == 0 {
		c.beta = 5
	}
	if c.q == 0 {
		c.q = 100
	}
	if c.rho == 0 {
		c.rho = 0.5
	}
	if c.countSubjects <= 0 {
		c.countSubjects = 20
	}
	if c.maxIteration <= 0 {
		c.maxIteration = 200
	}
	if c.maxAnts <= 0 {
		c.maxAnts = 20
	}
	return c
}

type parameter struct{ name, value string }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// parameters lists the TestParameters rows of one run in insertion order.
func (c colonyParams) parameters(clients int) []parameter {
	return []parameter{
		{"Alpha", formatFloat(c.alpha)},
		{"Beta", formatFloat(c.beta)},
		{"Q", formatFloat(c.q)},
		{"RHO", formatFloat(c.rho)},
		{"CountSubjects", strconv.Itoa(c.countSubjects)},
		{"maxIteration", strconv.Itoa(c.maxIteration)},
		{"MaxAnts", strconv.Itoa(c.maxAnts)},
		{"NumClients", strconv.Itoa(clients)},
	}
}

type runMetrics struct {
	bestItems     string
	bestValue     float64
	methodRunTime float64
	totalRunTime  float64
}

// syntheticRun fakes one distributed colony run. Method time shrinks as ants are spread over more
// clients, while starting the clients costs time proportional to their number.
func syntheticRun(rng *rand.Rand, c colonyParams, clients int) runMetrics {
	items := make([]string, c.countSubjects)
	picked := 0
	for i := range items {
		if rng.Float64() < 0.5 {
			items[i] = "1"
			picked++
		} else {
			items[i] = "0"
		}
	}
	best := float64(picked)*10 + rng.Float64()*5

	work := float64(c.maxIteration*c.maxAnts) / 1000
	method := work/float64(clients)*(0.9+0.2*rng.Float64()) + 0.05*float64(clients)
	startup := 0.12*float64(clients)*(0.8+0.4*rng.Float64()) + 0.3
	return runMetrics{
		bestItems:     strings.Join(items, ","),
		bestValue:     best,
		methodRunTime: method,
		totalRunTime:  method + startup,
	}
}
