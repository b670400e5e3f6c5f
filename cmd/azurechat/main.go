package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/azurechat/cmd/azurechat/serve"
	"github.com/papercomputeco/azurechat/cmd/azurechat/tui"
)

const rootLongDesc string = `azurechat is a small chat front-end for an Azure OpenAI deployment.

Settings are read from the environment (and a .env file when present):
  AZURE_OPENAI_MODEL     deployment name
  AZURE_OPENAI_ENDPOINT  resource endpoint URL
  AZURE_OPENAI_KEY       API key
  AZURE_OPENAI_VERSION   API version

Optional:
  AZURECHAT_LISTEN       listen address for serve (default :32123)
  AZURECHAT_DEBUG        enable debug logging
  AZURECHAT_CONFIG       path to a TOML file with listen_addr, debug, persona`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "azurechat",
		Short:         "Chat with an Azure OpenAI deployment",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(tuicmder.NewChatCmd())

	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "azurechat:", err)
		os.Exit(1)
	}
}
