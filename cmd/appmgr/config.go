package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/appmgr/internal/config"
	"github.com/steveyegge/appmgr/internal/ui"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "setup",
	Short:   "Read and write settings in .appmgr/config.yaml",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the effective value of a setting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		if !config.IsKnownKey(key) {
			FatalErrorRespectJSON("unknown config key %q", key)
		}
		value := config.AllSettings()[key]
		if jsonOutput {
			outputJSON(map[string]interface{}{"key": key, "value": value})
			return
		}
		fmt.Println(value)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a setting to the project config file",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.SetYamlConfig(args[0], args[1]); err != nil {
			FatalErrorRespectJSON("%v", err)
		}
		if jsonOutput {
			outputJSON(map[string]string{"key": args[0], "value": args[1]})
			return
		}
		fmt.Printf("%s Set %s = %s\n", ui.RenderPassIcon(), args[0], args[1])
	},
}

var configListKeysCmd = &cobra.Command{
	Use:   "list-keys",
	Short: "List known settings and their effective values",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		settings := config.AllSettings()
		if jsonOutput {
			known := make(map[string]interface{}, len(config.KnownKeys))
			for _, k := range config.SortedKeys() {
				known[k] = settings[k]
			}
			outputJSON(known)
			return
		}
		for _, k := range config.SortedKeys() {
			fmt.Printf("%s %v\n", ui.PadRight(k, 14), settings[k])
		}
		if used := config.ConfigFileUsed(); used != "" {
			fmt.Println(ui.RenderMuted("from " + used))
		}
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configListKeysCmd)
	rootCmd.AddCommand(configCmd)
}
