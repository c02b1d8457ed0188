package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tariff-observer/src/grpc_control"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
)

func newCtlCmd() *cobra.Command {
	var addr string
	var timeout time.Duration
	var params []string
	cmd := &cobra.Command{
		Use:   "ctl [method]",
		Short: "Call the gRPC control service of a running server",
		Long: `Calls one DashboardControl method and prints the JSON response.

Methods: ListSources, GetStatus, Refresh, RemoveSource, GetComparison,
GetCorrelation. Arguments are passed as --arg key=value, e.g.

  tariff-observer ctl GetComparison --arg panel=trade_us --arg from=2020-06`,
		Args: cobra.ExactArgs(1),
		// The control client needs no config file.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseArgs(params)
			if err != nil {
				return err
			}

			conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			out, err := grpc_control.NewDashboardControlClient(conn).Call(ctx, args[0], fields)
			if err != nil {
				return err
			}
			b, err := protojson.MarshalOptions{Multiline: true}.Marshal(out)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:50051", "gRPC control server address")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "call timeout")
	cmd.Flags().StringArrayVar(&params, "arg", nil, "method argument as key=value (repeatable)")
	return cmd
}

// parseArgs turns key=value pairs into Struct fields. Integer values become
// numbers.
func parseArgs(pairs []string) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q, expected key=value", pair)
		}
		if n, err := strconv.Atoi(value); err == nil {
			fields[key] = n
			continue
		}
		fields[key] = value
	}
	return fields, nil
}
