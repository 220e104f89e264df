package models

import (
	"errors"
	"fmt"
)

// Tenants with built-in farm defaults.
const (
	TenantSaudi    = "saudi"
	TenantFreeport = "freeport"
)

// DayWindow is an inclusive range of simulation days.
type DayWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether day falls inside the window.
func (w DayWindow) Contains(day int) bool {
	return day >= w.Start && day <= w.End
}

// FarmConfig carries the capacity and lifecycle configuration of one
// facility.
type FarmConfig struct {
	NumProdTanks           int            `json:"num_prod_tanks"`
	ProdTankCapacity       int            `json:"prod_tank_capacity"`
	NumBroodstockTanks     int            `json:"num_broodstock_tanks"`
	BroodstockTankCapacity int            `json:"broodstock_tank_capacity"`
	StageCapacities        StageCounts    `json:"stage_capacities"`
	DefaultBSQuantity      int            `json:"default_bs_quantity"`
	MaxBatchQuantity       int            `json:"max_batch_quantity"`
	Cycles                 CycleDays      `json:"cycles"`
	Mortality              MortalityRates `json:"mortality"`
}

// ProdCapacity is the facility-level production pool covering MF and FS
// occupancy.
func (c FarmConfig) ProdCapacity() int {
	return c.NumProdTanks * c.ProdTankCapacity
}

// BroodstockCapacity is the facility-level pool covering BS occupancy.
func (c FarmConfig) BroodstockCapacity() int {
	return c.NumBroodstockTanks * c.BroodstockTankCapacity
}

// Validate fails fast on missing or nonsensical configuration so the
// simulation never runs against silently defaulted capacity.
func (c FarmConfig) Validate() error {
	switch {
	case c.NumProdTanks <= 0:
		return errors.New("farm config: num_prod_tanks must be positive")
	case c.ProdTankCapacity <= 0:
		return errors.New("farm config: prod_tank_capacity must be positive")
	case c.NumBroodstockTanks <= 0:
		return errors.New("farm config: num_broodstock_tanks must be positive")
	case c.BroodstockTankCapacity <= 0:
		return errors.New("farm config: broodstock_tank_capacity must be positive")
	case c.DefaultBSQuantity <= 0:
		return errors.New("farm config: default_bs_quantity must be positive")
	case c.MaxBatchQuantity <= 0:
		return errors.New("farm config: max_batch_quantity must be positive")
	}

	for _, stage := range []Stage{StageBroodstock, StageMicrofragment, StageFusionStructure, StageOutplanted} {
		if c.StageCapacities.Get(stage) <= 0 {
			return fmt.Errorf("farm config: stage capacity for %s must be positive", stage)
		}
	}

	if c.Cycles.BS <= 0 || c.Cycles.MF <= 0 || c.Cycles.FS <= 0 {
		return errors.New("farm config: all cycle lengths must be positive")
	}

	return nil
}

// DefaultFarmConfig returns the built-in facility configuration for a
// tenant. Unknown tenants fall back to the freeport layout.
func DefaultFarmConfig(tenant string) FarmConfig {
	cfg := FarmConfig{
		NumProdTanks:           27,
		ProdTankCapacity:       1000,
		NumBroodstockTanks:     6,
		BroodstockTankCapacity: 100,
		StageCapacities:        StageCounts{BS: 1000, MF: 300, FS: 300, OP: 1000},
		DefaultBSQuantity:      100,
		MaxBatchQuantity:       100,
		Cycles:                 CycleDays{BS: 28, MF: 30, FS: 90},
		Mortality:              MortalityRates{BS: 0.05, MF: 0.1, FS: 0.05},
	}
	if tenant == TenantSaudi {
		cfg.NumProdTanks = 32
		cfg.ProdTankCapacity = 2100
		cfg.NumBroodstockTanks = 8
		cfg.BroodstockTankCapacity = 150
	}
	return cfg
}

// DefaultProductionOrder returns the per-species cumulative output targets
// for a tenant.
func DefaultProductionOrder(tenant string) map[string]int {
	if tenant == TenantSaudi {
		return map[string]int{"APHA": 4200, "PMAL": 4200}
	}
	return map[string]int{"PAST": 7000, "APAL": 6000, "APRO": 6000, "PCLI": 3000, "ACER": 5000}
}
