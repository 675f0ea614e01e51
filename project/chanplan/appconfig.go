package main

import (
	"log"

	"github.com/spf13/viper"
)

var indir = "."

// Default run parameters, overridable from config.yaml in indir
var (
	RoomLength       = 200.0
	RoomWidth        = 200.0
	NTransmitters    = 15
	TxPowerDbm       = 10.0
	PathLossExponent = 2.5
	RefDistance      = 1.0
	ShadowSigmaDb    = 0.0
	MinTxDistance    = 20.0
	NumChannels      = 11
	MinSIRDb         = 20.0
	SIRStepDb        = 1.0
	MaxThresholdHops = 10
	NodeBudget       = 200000
	MaxSweeps        = 50
	BaselineIters    = 1000
	Runs             = 10
	InitialSeed      = int64(6)
)

// ReadAppConfig reads all the configuration for the app
func ReadAppConfig() {
	viper.AddConfigPath(indir)
	viper.SetConfigName("config")

	err := viper.ReadInConfig()
	if err != nil {
		log.Print("ReadInConfig ", err)
	}
	// Set all the default values
	{
		viper.SetDefault("RoomLength", RoomLength)
		viper.SetDefault("RoomWidth", RoomWidth)
		viper.SetDefault("NTransmitters", NTransmitters)
		viper.SetDefault("TxPowerDbm", TxPowerDbm)
		viper.SetDefault("PathLossExponent", PathLossExponent)
		viper.SetDefault("RefDistance", RefDistance)
		viper.SetDefault("ShadowSigmaDb", ShadowSigmaDb)
		viper.SetDefault("MinTxDistance", MinTxDistance)
		viper.SetDefault("NumChannels", NumChannels)
		viper.SetDefault("MinSIRDb", MinSIRDb)
		viper.SetDefault("SIRStepDb", SIRStepDb)
		viper.SetDefault("MaxThresholdHops", MaxThresholdHops)
		viper.SetDefault("NodeBudget", NodeBudget)
		viper.SetDefault("MaxSweeps", MaxSweeps)
		viper.SetDefault("BaselineIters", BaselineIters)
		viper.SetDefault("Runs", Runs)
		viper.SetDefault("InitialSeed", InitialSeed)
	}

	// Load from the external configuration files
	RoomLength = viper.GetFloat64("RoomLength")
	RoomWidth = viper.GetFloat64("RoomWidth")
	NTransmitters = viper.GetInt("NTransmitters")
	TxPowerDbm = viper.GetFloat64("TxPowerDbm")
	PathLossExponent = viper.GetFloat64("PathLossExponent")
	RefDistance = viper.GetFloat64("RefDistance")
	ShadowSigmaDb = viper.GetFloat64("ShadowSigmaDb")
	MinTxDistance = viper.GetFloat64("MinTxDistance")
	NumChannels = viper.GetInt("NumChannels")
	MinSIRDb = viper.GetFloat64("MinSIRDb")
	SIRStepDb = viper.GetFloat64("SIRStepDb")
	MaxThresholdHops = viper.GetInt("MaxThresholdHops")
	NodeBudget = viper.GetInt("NodeBudget")
	MaxSweeps = viper.GetInt("MaxSweeps")
	BaselineIters = viper.GetInt("BaselineIters")
	Runs = viper.GetInt("Runs")
	InitialSeed = viper.GetInt64("InitialSeed")
}
