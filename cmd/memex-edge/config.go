package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved instance configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := cfg.ResolveEndpoint()
		out := map[string]interface{}{
			"instance_name": cfg.InstanceName,
			"hosting_mode":  cfg.HostingMode,
			"chroma_host":   endpoint.ChromaHost,
			"chroma_port":   endpoint.ChromaPort,
			"mcp_port":      endpoint.MCPPort,
			"use_tunnel":    cfg.UseTunnel(),
			"tunnel_url":    cfg.TunnelURL(),
			"config_path":   filepath.Join(homeConfigDir, "instance.json"),
			"data_dir":      dataDir,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
