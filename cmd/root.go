package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magneticio/go-common/logging"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// Version should be in format vd.d.d where d is a decimal number
const Version string = "v0.1.0"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "labelsplit",
	Short: "Split labelled image collections into train, validation and test sets",
	Long: `Split pixel labelled image collections into train, validation and test sets:
  labelsplit split ./msrc_objcategimagedatabase_v2
  labelsplit stats ./msrc_objcategimagedatabase_v2
  labelsplit eval evalList.csv
  labelsplit serve
  `,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {

	logging.Init(os.Stdout, os.Stderr)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.labelsplit/config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&logging.Verbose, "verbose", "v", false, "Verbose output")

	viper.BindEnv("config", "LABELSPLITCONFIG")
	SetSplitDefaults(viper.GetViper())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.AutomaticEnv() // read in environment variables that match
	if cfgFile == "" {
		cfgFile = viper.GetString("config")
	}
	if logging.Verbose {
		logging.Info("Using Config file path: %v\n", cfgFile)
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, homeDirError := homedir.Dir()
		if homeDirError != nil {
			logging.Error("Can not find home Directory: %v\n", homeDirError)
			os.Exit(1)
		}
		// Search config in home directory with name ".labelsplit" (without extension).
		path := filepath.FromSlash(home + "/.labelsplit")
		viper.AddConfigPath(path)
		viper.SetConfigName("config")
	}
	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logging.Info("Using config file: %v\n", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		logging.Error("Config can not be read due to error: %v\n", err)
	}
}
