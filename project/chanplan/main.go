// chanplan drops WiFi transmitters in a room, solves their channel
// assignment against a minimum-SIR constraint and compares the
// resulting noise floor with a randomized baseline, run over a seed
// schedule.
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"github.com/fatih/color"
	"github.com/grd/statistics"
	log "github.com/sirupsen/logrus"
	"github.com/wiless/vlib"

	"github.com/wiless/wifiplan"
	"github.com/wiless/wifiplan/assign"
	"github.com/wiless/wifiplan/deployment"
	"github.com/wiless/wifiplan/pathloss"
	"github.com/wiless/wifiplan/sim"
	"github.com/wiless/wifiplan/spectral"
)

var matlab *vlib.Matlab

func main() {
	ReadAppConfig()

	matlab = vlib.NewMatlab("chanplan.m")
	matlab.Silent = true

	plan := channelPlan()
	if err := plan.Validate(); err != nil {
		log.Fatalf("chanplan: %v", err)
	}
	matlab.Export("ChannelCentersMHz", plan.Centers())

	fid, err := os.Create("results.csv")
	if err != nil {
		log.Fatalf("chanplan: %v", err)
	}
	defer fid.Close()
	writer := csv.NewWriter(fid)
	defer writer.Flush()
	writer.Write([]string{"seed", "channels", "algo_noise_floor_dbm", "baseline_noise_floor_dbm", "sir_threshold_db", "converged"})

	var runAvg *wifiplan.InterferenceMatrix
	algoFloors := statistics.Float64{}
	successes := 0

	for run := 0; run < Runs; run++ {
		seed := InitialSeed + int64(run)*13
		log.Infof("--- Run %d/%d (seed %d) ---", run+1, Runs, seed)

		floorDbm, baselineDbm, channels, threshold, converged, m := runOnce(seed)
		if m == nil {
			continue
		}
		// the mean is over successful runs only, skipped drops do not count
		successes++
		if runAvg == nil {
			runAvg = m.Clone()
		} else {
			runAvg.Fold(m, successes)
		}
		algoFloors = append(algoFloors, floorDbm)

		writer.Write([]string{
			fmt.Sprint(seed),
			fmt.Sprint(channels),
			fmt.Sprintf("%.3f", floorDbm),
			fmt.Sprintf("%.3f", baselineDbm),
			fmt.Sprintf("%.1f", threshold),
			fmt.Sprint(converged),
		})
	}

	if runAvg != nil {
		matlab.Export("AvgInterferenceDbm", runAvg.Dbm())
		mean := statistics.Mean(&algoFloors)
		max, _ := statistics.Max(&algoFloors)
		color.Green("Average noisefloor (mean dBm): %.3f  worst run: %.3f", mean, max)
	}
	matlab.Close()
}

// channelPlan is the 2.4GHz plan geometry restricted to the configured
// channel count.
func channelPlan() spectral.Channels {
	plan := spectral.NewChannels()
	plan.NumChannels = NumChannels
	return plan
}

// runOnce drops, solves and reports a single seeded scenario.
func runOnce(seed int64) (floorDbm, baselineDbm float64, channels vlib.VectorI, threshold float64, converged bool, m *wifiplan.InterferenceMatrix) {
	rnd := rand.New(rand.NewSource(seed))

	setting := deployment.NewDropSetting()
	setting.LengthX = RoomLength
	setting.LengthY = RoomWidth
	setting.NCount = NTransmitters
	setting.MinSeparation = MinTxDistance
	setting.TxPowerDBm = TxPowerDbm

	drop, err := deployment.NewDropSystem(setting, rnd)
	if err != nil {
		log.Fatalf("chanplan: %v", err)
	}
	if err := drop.Drop(); err != nil {
		log.Errorf("chanplan: %v, skipping run", err)
		return 0, 0, nil, 0, false, nil
	}

	var msetting pathloss.ModelSetting
	msetting.SetDefault()
	msetting.Exponent = PathLossExponent
	msetting.RefDistance = RefDistance
	msetting.ShadowSigmaDb = ShadowSigmaDb
	if err := msetting.Init(); err != nil {
		log.Fatalf("chanplan: %v", err)
	}
	model, err := pathloss.NewModel(msetting)
	if err != nil {
		log.Fatalf("chanplan: %v", err)
	}
	model.SetRandSource(rnd)

	plan := channelPlan()

	sys := wifiplan.NewSystem()
	sys.TxPowerDbm = TxPowerDbm
	sys.FrequencyGHz = plan.CenterMHz(1) / 1000.0

	oracle := &assign.Oracle{
		Sys:       sys,
		Model:     model,
		Mask:      spectral.DefaultMask,
		Positions: drop.Locations3D(),
		MinSIRDb:  MinSIRDb,
	}
	cfg := assign.Config{
		NumChannels:   plan.NumChannels,
		MinSIRDb:      MinSIRDb,
		NodeBudget:    NodeBudget,
		MaxIterations: MaxSweeps,
	}

	channels, threshold, err = assign.SolveBestThreshold(cfg, oracle, SIRStepDb, MaxThresholdHops)
	converged = err == nil
	if err != nil {
		// hard constraints infeasible, soften: hill-climb from the
		// least-violating candidate
		var infeasible *assign.InfeasibleError
		initial := vlib.VectorI(nil)
		if errors.As(err, &infeasible) {
			log.Infof("chanplan: %v", infeasible)
			initial = infeasible.Best
		}
		search, lerr := assign.NewLocalSearch(cfg, oracle, rnd)
		if lerr != nil {
			log.Fatalf("chanplan: %v", lerr)
		}
		result, lerr := search.OptimizeChannels(initial)
		if lerr != nil {
			log.Fatalf("chanplan: %v", lerr)
		}
		channels = result.Channels
		threshold = 0
		converged = result.Converged
	}

	m, err = sys.EvaluateMatrix(oracle.Positions, channels, model, oracle.Mask)
	if err != nil {
		log.Fatalf("chanplan: %v", err)
	}
	metrics := sys.EvaluateTxMetrics(m, channels)
	printSummary(metrics)

	agg := m.AggregateDbm()
	floorDbm = vlib.Sum(agg) / float64(len(agg))

	baselineDbm = runBaseline(oracle, rnd)

	vlib.SaveStructure(drop, fmt.Sprintf("drop_%d.json", seed), true)
	return floorDbm, baselineDbm, channels, threshold, converged, m
}

// runBaseline estimates the expected noise floor under uniformly random
// assignments.
func runBaseline(oracle *assign.Oracle, rnd *rand.Rand) float64 {
	eval, err := sim.NewEvaluator(oracle, NumChannels, BaselineIters, rnd)
	if err != nil {
		log.Errorf("chanplan: baseline %v", err)
		return wifiplan.FloorDbm
	}
	result, err := eval.Run()
	if err != nil {
		log.Errorf("chanplan: baseline %v", err)
		return wifiplan.FloorDbm
	}
	return result.Stats.MeanDbm
}

func printSummary(metrics []wifiplan.TxMetric) {
	color.Cyan("%4s %8s %16s %12s", "Tx", "Channel", "NoiseFloor(dBm)", "SIR(dB)")
	for _, met := range metrics {
		fmt.Printf("%4d %8d %16.2f %12.2f\n", met.TxNodeID, met.Channel, met.NoiseFloorDbm, met.SIRDb)
	}
}
