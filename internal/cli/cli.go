// Package cli implements the dynamap command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"reflect"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/truora/dynamap"
	v2client "github.com/truora/dynamap/aws-v2/client"
	"github.com/truora/dynamap/config"
	"github.com/truora/dynamap/core"
	"github.com/truora/dynamap/diagnostics"
	"github.com/truora/dynamap/metadata"
	"github.com/truora/dynamap/server"
	"github.com/truora/dynamap/storage"
	"github.com/truora/dynamap/types"
)

// Backend opens the store used by the commands
type Backend interface {
	Store(ctx context.Context, container string, schema types.ContainerSchema) (storage.Client, error)
	Tables(ctx context.Context) (v2client.TableAPI, error)
}

type dynamoBackend struct {
	cfg *config.Config
}

// NewDynamoBackend returns a backend talking to the DynamoDB service described by cfg
func NewDynamoBackend(cfg *config.Config) Backend {
	return &dynamoBackend{cfg: cfg}
}

func (b *dynamoBackend) api(ctx context.Context) (*dynamodb.Client, error) {
	awsCfg, err := config.LoadAWS(ctx, b.cfg)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(awsCfg), nil
}

func (b *dynamoBackend) Store(ctx context.Context, container string, schema types.ContainerSchema) (storage.Client, error) {
	api, err := b.api(ctx)
	if err != nil {
		return nil, err
	}

	return v2client.NewClient(api,
		v2client.WithConsistentRead(b.cfg.ConsistentRead),
		v2client.WithContainer(container, schema),
	), nil
}

func (b *dynamoBackend) Tables(ctx context.Context) (v2client.TableAPI, error) {
	return b.api(ctx)
}

// NewRootCommand returns the root command with all subcommands attached
func NewRootCommand(ctx context.Context, backend Backend, logger diagnostics.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dynamap",
		Short:         "Point reads against DynamoDB containers.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewGetCommand(ctx, backend, logger))
	rootCmd.AddCommand(NewCreateCommand(ctx, backend))
	rootCmd.AddCommand(NewServeCommand(ctx))

	return rootCmd
}

type containerFlags struct {
	container     string
	table         string
	partitionAttr string
	idAttr        string
}

func (f *containerFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.container, "container", "c", "", "container to read from")
	cmd.Flags().StringVar(&f.table, "table", "", "physical table, defaults to the container name")
	cmd.Flags().StringVar(&f.partitionAttr, "pk-attr", "", "partition key attribute of the table")
	cmd.Flags().StringVar(&f.idAttr, "id-attr", "", "id attribute of the table, defaults to id")

	_ = cmd.MarkFlagRequired("container")
}

func (f *containerFlags) schema() types.ContainerSchema {
	return types.ContainerSchema{
		Table:                 f.table,
		PartitionKeyAttribute: f.partitionAttr,
		IDAttribute:           f.idAttr,
	}
}

// NewGetCommand returns the command reading one item by id
func NewGetCommand(ctx context.Context, backend Backend, logger diagnostics.Logger) *cobra.Command {
	var (
		flags        containerFlags
		id           string
		partitionKey string
	)

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Read one item by id and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			et, err := itemEntityType(flags.container, flags.partitionAttr)
			if err != nil {
				return err
			}

			store, err := backend.Store(ctx, flags.container, flags.schema())
			if err != nil {
				return err
			}

			db, err := dynamap.New(store,
				dynamap.WithLogger(logger),
				dynamap.WithContextType(reflect.TypeOf(cmd)),
				dynamap.WithTrackingBehavior(dynamap.NoTracking),
			)
			if err != nil {
				return err
			}

			var pk any
			if flags.partitionAttr != "" {
				pk = partitionKey
			}

			item, found, err := dynamap.FindByID[map[string]any](ctx, db, et, id, pk)
			if err != nil {
				return err
			}

			if !found {
				return fmt.Errorf("item %q not found in %s", id, flags.container)
			}

			return writeJSON(cmd.OutOrStdout(), *item)
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&id, "id", "", "item id")
	cmd.Flags().StringVarP(&partitionKey, "partition-key", "p", "", "partition key value")

	_ = cmd.MarkFlagRequired("id")

	return cmd
}

// NewCreateCommand returns the command creating the table backing a container
func NewCreateCommand(ctx context.Context, backend Backend) *cobra.Command {
	var flags containerFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the table backing a container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := backend.Tables(ctx)
			if err != nil {
				return err
			}

			if err := v2client.EnsureContainer(ctx, tables, flags.container, flags.schema()); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "container %s ready\n", flags.container)

			return err
		},
	}

	flags.bind(cmd)

	return cmd
}

// NewServeCommand returns the command serving an in-memory store over the DynamoDB JSON protocol
func NewServeCommand(ctx context.Context) *cobra.Command {
	var (
		addr    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an in-memory store until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := diagnostics.NewBase(cmd.ErrOrStderr(), verbose)

			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}

			httpServer := &http.Server{
				Handler:           server.NewServer(core.NewClient(), logger),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)

			go func() {
				errCh <- httpServer.Serve(listener)
			}()

			logger.Info("serving in-memory store", "addr", listener.Addr().String())

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return err
			}

			if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8000", "listen address")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every request")

	return cmd
}

// itemEntityType describes an untyped item read by id
func itemEntityType(container, partitionAttr string) (*metadata.EntityType, error) {
	et := metadata.NewEntityType("Item", reflect.TypeOf(map[string]any{}), container)

	id := metadata.NewProperty("ID", reflect.TypeOf("")).WithStoreName(types.IDAttributeName)
	if err := et.AddProperty(id); err != nil {
		return nil, err
	}

	if err := et.SetPrimaryKey("ID"); err != nil {
		return nil, err
	}

	if partitionAttr == "" {
		return et, nil
	}

	if err := et.AddProperty(metadata.NewProperty("PartitionKey", reflect.TypeOf("")).WithStoreName(partitionAttr)); err != nil {
		return nil, err
	}

	return et, et.SetPartitionKey("PartitionKey")
}

func writeJSON(w io.Writer, v any) error {
	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(out))

	return err
}
