package main

import (
	"strconv"

	"github.com/cloud-barista/cb-subnet/pkg/model"
	"github.com/spf13/cobra"
)

func newNetworkCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "network", Short: "Manage subnets"}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create",
			Short: "Create a subnet administered by the caller",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return printBody(cmd)(newClient().R().Post("/networks"))
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List every subnet",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return printBody(cmd)(newClient().R().Get("/networks"))
			},
		},
		&cobra.Command{
			Use:   "count",
			Short: "Print the number of live subnets",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return printField(cmd, "count")(newClient().R().Get("/networks/count"))
			},
		},
		&cobra.Command{
			Use:   "get ID",
			Short: "Print a subnet",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printBody(cmd)(newClient().R().SetPathParam("id", args[0]).Get("/networks/{id}"))
			},
		},
		&cobra.Command{
			Use:   "data ID",
			Short: "Print the data JSON of a subnet",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printBody(cmd)(newClient().R().SetPathParam("id", args[0]).Get("/networks/{id}/data"))
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a subnet",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printBody(cmd)(newClient().R().SetPathParam("id", args[0]).Delete("/networks/{id}"))
			},
		},
		&cobra.Command{
			Use:   "state ID true|false",
			Short: "Activate or deactivate a subnet",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				active, err := strconv.ParseBool(args[1])
				if err != nil {
					return err
				}
				return printBody(cmd)(newClient().R().
					SetPathParam("id", args[0]).
					SetBody(model.NetworkStateRequest{Active: &active}).
					Put("/networks/{id}/state"))
			},
		},
	)
	return cmd
}

func newPeerCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "peer", Short: "Manage the peers of a subnet"}

	var macHash string
	add := &cobra.Command{
		Use:   "add ID PUBKEYHASH",
		Short: "Add a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printBody(cmd)(newClient().R().
				SetPathParam("id", args[0]).
				SetBody(model.PeerRequest{PubKeyHash: args[1], MacHash: macHash}).
				Post("/networks/{id}/peers"))
		},
	}
	add.Flags().StringVar(&macHash, "mac-hash", "", "macHash of the peer")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "remove ID PUBKEYHASH",
			Short: "Remove a peer",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printBody(cmd)(newClient().R().
					SetPathParams(map[string]string{"id": args[0], "pubKeyHash": args[1]}).
					Delete("/networks/{id}/peers/{pubKeyHash}"))
			},
		},
		&cobra.Command{
			Use:   "info ID PUBKEYHASH",
			Short: "Print a peer",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printBody(cmd)(newClient().R().
					SetPathParams(map[string]string{"id": args[0], "pubKeyHash": args[1]}).
					Get("/networks/{id}/peers/{pubKeyHash}"))
			},
		},
		&cobra.Command{
			Use:   "list ID",
			Short: "List the peers of a subnet",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printBody(cmd)(newClient().R().SetPathParam("id", args[0]).Get("/networks/{id}/peers"))
			},
		},
		&cobra.Command{
			Use:   "count ID",
			Short: "Print the number of peers of a subnet",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printField(cmd, "count")(newClient().R().SetPathParam("id", args[0]).Get("/networks/{id}/peers/count"))
			},
		},
	)
	return cmd
}

func newRelationCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "relation", Short: "Manage the relations between the peers of a subnet"}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add ID MINE OTHER",
			Short: "Make two peers neighbors",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printBody(cmd)(newClient().R().
					SetPathParam("id", args[0]).
					SetBody(model.RelationRequest{Mine: args[1], Other: args[2]}).
					Post("/networks/{id}/relations"))
			},
		},
		&cobra.Command{
			Use:   "remove ID MINE OTHER",
			Short: "Remove the relation between two peers",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printBody(cmd)(newClient().R().
					SetPathParam("id", args[0]).
					SetQueryParams(map[string]string{"mine": args[1], "other": args[2]}).
					Delete("/networks/{id}/relations"))
			},
		},
	)
	return cmd
}

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage the user directory"}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "register PUBKEYHASH MACHASH",
			Short: "Register a user or overwrite its macHash",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printBody(cmd)(newClient().R().
					SetBody(model.PeerRequest{PubKeyHash: args[0], MacHash: args[1]}).
					Post("/users"))
			},
		},
		&cobra.Command{
			Use:   "get PUBKEYHASH",
			Short: "Print the macHash of a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printField(cmd, "macHash")(newClient().R().SetPathParam("pubKeyHash", args[0]).Get("/users/{pubKeyHash}"))
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the registered users",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return printBody(cmd)(newClient().R().Get("/users"))
			},
		},
		&cobra.Command{
			Use:   "count",
			Short: "Print the number of registered users",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return printField(cmd, "count")(newClient().R().Get("/users/count"))
			},
		},
	)
	return cmd
}

func newEventsCommand() *cobra.Command {
	var since uint64
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the event records after a sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printBody(cmd)(newClient().R().
				SetQueryParam("since", strconv.FormatUint(since, 10)).
				Get("/events"))
		},
	}
	cmd.Flags().Uint64Var(&since, "since", 0, "print the records whose sequence is greater than this")
	return cmd
}
