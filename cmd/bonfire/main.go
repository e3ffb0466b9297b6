package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	common "github.com/cuihairu/bonfire/internal/cli/common"
	servercmd "github.com/cuihairu/bonfire/internal/cli/servercmd"
)

var version = "dev"

func main() {
	root := &cobra.Command{Use: "bonfire", Short: "Bonfire game lifecycle server"}

	root.AddCommand(servercmd.New())

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	comp := &cobra.Command{Use: "completion [bash|zsh|fish|powershell]", Short: "Generate shell completion"}
	comp.Run = func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			log.Fatalf("specify a shell: bash|zsh|fish|powershell")
		}
		var err error
		switch args[0] {
		case "bash":
			err = root.GenBashCompletion(os.Stdout)
		case "zsh":
			err = root.GenZshCompletion(os.Stdout)
		case "fish":
			err = root.GenFishCompletion(os.Stdout, true)
		case "powershell":
			err = root.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			log.Fatalf("unknown shell: %s", args[0])
		}
		if err != nil {
			log.Fatal(err)
		}
	}
	root.AddCommand(comp)

	cfgTest := &cobra.Command{Use: "config-test", Aliases: []string{"check"}, Short: "Validate a server config file"}
	var cfgFile, profile string
	var includes []string
	cfgTest.Flags().StringVar(&cfgFile, "config", "", "config file path")
	cfgTest.Flags().StringSliceVar(&includes, "include", nil, "extra config files merged in order")
	cfgTest.Flags().StringVar(&profile, "profile", "", "optional profiles.<name> overlay")
	cfgTest.RunE = func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			return fmt.Errorf("--config required")
		}
		v, err := common.LoadServerConfig(common.LoadOptions{File: cfgFile, Includes: includes, Profile: profile})
		if err != nil {
			return err
		}
		if err := common.ValidateServerConfig(v, true); err != nil {
			return err
		}
		fmt.Println("server config OK")
		return nil
	}
	root.AddCommand(cfgTest)

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
