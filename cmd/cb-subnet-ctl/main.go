// cb-subnet-ctl is a command line client of the cb-subnet registry.
package main

import (
	"fmt"
	"os"

	"github.com/cloud-barista/cb-subnet/pkg/model"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var (
	serverURL string
	caller    string
)

func newClient() *resty.Client {
	client := resty.New().
		SetHostURL(serverURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if caller != "" {
		client.SetHeader(model.CallerHeader, caller)
	}
	return client
}

// check turns a failed response into an error carrying the registry's message.
func check(resp *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		message := gjson.GetBytes(resp.Body(), "message").String()
		if message == "" {
			message = resp.String()
		}
		return nil, fmt.Errorf("%s: %s", resp.Status(), message)
	}
	return resp, nil
}

// printBody returns a function printing the body of a successful response.
func printBody(cmd *cobra.Command) func(*resty.Response, error) error {
	return func(resp *resty.Response, err error) error {
		resp, err = check(resp, err)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.String())
		return nil
	}
}

// printField returns a function printing one field of a successful response.
func printField(cmd *cobra.Command, field string) func(*resty.Response, error) error {
	return func(resp *resty.Response, err error) error {
		resp, err = check(resp, err)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), gjson.GetBytes(resp.Body(), field).String())
		return nil
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cb-subnet-ctl",
		Short:         "Manage subnets, peers, relations and users of a cb-subnet registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8054", "registry URL")
	root.PersistentFlags().StringVar(&caller, "caller", os.Getenv("CB_SUBNET_CALLER"), "caller identity")

	root.AddCommand(newNetworkCommand(), newPeerCommand(), newRelationCommand(), newUserCommand(), newEventsCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
