package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/ruteri/legal-document-registry/api"
	"github.com/ruteri/legal-document-registry/api/clients"
	"github.com/ruteri/legal-document-registry/cmd/flags"
	"github.com/ruteri/legal-document-registry/config"
	"github.com/ruteri/legal-document-registry/interfaces"
	"github.com/ruteri/legal-document-registry/workflow"
)

var flagTitle = &cli.StringFlag{
	Name:     "title",
	Required: true,
	Usage:    "document title",
}
var flagDocType = &cli.StringFlag{
	Name:     "type",
	Required: true,
	Usage:    "document type, e.g. contract",
}
var flagJurisdiction = &cli.StringFlag{
	Name:  "jurisdiction",
	Usage: "governing jurisdiction",
}
var flagFile = &cli.StringFlag{
	Name:     "file",
	Aliases:  []string{"f"},
	Required: true,
	Usage:    "path to the PDF, DOC or DOCX file",
}
var flagAuthor = &cli.StringFlag{
	Name:  "author",
	Usage: "document author",
}
var flagDescription = &cli.StringFlag{
	Name:  "description",
	Usage: "free-form description",
}
var flagCategory = &cli.StringFlag{
	Name:  "category",
	Usage: "document category",
}
var flagEffectiveDate = &cli.StringFlag{
	Name:  "effective-date",
	Usage: "effective date, YYYY-MM-DD",
}
var flagExpirationDate = &cli.StringFlag{
	Name:  "expiration-date",
	Usage: "expiration date, YYYY-MM-DD",
}
var flagTags = &cli.StringSliceFlag{
	Name:  "tag",
	Usage: "tag to attach, may be repeated",
}

var flagContentHash = &cli.StringFlag{
	Name:     "content-hash",
	Required: true,
	Usage:    "content hash as recorded in the registry",
}
var flagTimestamp = &cli.Uint64Flag{
	Name:     "timestamp",
	Required: true,
	Usage:    "publication timestamp, seconds since epoch",
}
var flagPublisher = &cli.StringFlag{
	Name:     "publisher",
	Required: true,
	Usage:    "publisher address, 0x-prefixed hex",
}

var flagServerAddr = &cli.StringFlag{
	Name:    "server-addr",
	EnvVars: []string{"DOCCTL_SERVER_ADDR"},
	Usage:   "talk to a registry-server at this URL instead of the chain and store directly",
}

const usage string = `Publish, inspect and revoke documents in the legal document registry.
Results are printed to stdout as JSON, logs go to stderr.`

func main() {
	app := &cli.App{
		Name:  "docctl",
		Usage: usage,
		Flags: append(append([]cli.Flag{flagServerAddr}, flags.ConfigFlags...), flags.LogFlags...),
		Commands: []*cli.Command{
			{
				Name:  "publish",
				Usage: "upload a file and record it in the registry",
				Flags: []cli.Flag{
					flagTitle, flagDocType, flagJurisdiction, flagFile,
					flagAuthor, flagDescription, flagCategory,
					flagEffectiveDate, flagExpirationDate, flagTags,
				},
				Action: withClient(func(cCtx *cli.Context, c *Client) error {
					return c.Publish(cCtx)
				}),
			},
			{
				Name:      "get",
				Usage:     "print a document record",
				ArgsUsage: "<document id>",
				Action: withClient(func(cCtx *cli.Context, c *Client) error {
					return c.Get(cCtx.Args().First())
				}),
			},
			{
				Name:      "revoke",
				Usage:     "revoke a document published by the configured signer",
				ArgsUsage: "<document id>",
				Action: withClient(func(cCtx *cli.Context, c *Client) error {
					return c.Revoke(cCtx.Args().First())
				}),
			},
			{
				Name:  "verify",
				Usage: "check that a content hash was published at a timestamp by a publisher",
				Flags: []cli.Flag{flagContentHash, flagTimestamp, flagPublisher},
				Action: withClient(func(cCtx *cli.Context, c *Client) error {
					return c.Verify(cCtx.String(flagContentHash.Name), cCtx.Uint64(flagTimestamp.Name), cCtx.String(flagPublisher.Name))
				}),
			},
			{
				Name:  "list",
				Usage: "list every published document with its current record",
				Action: withClient(func(cCtx *cli.Context, c *Client) error {
					return c.List()
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// Client runs commands either against the chain and store (components) or
// against a registry-server (remote).
type Client struct {
	cfg        *config.Config
	log        *slog.Logger
	components *flags.Components
	remote     *clients.DocumentClient
}

func withClient(action func(*cli.Context, *Client) error) cli.ActionFunc {
	return func(cCtx *cli.Context) error {
		if serverAddr := cCtx.String(flagServerAddr.Name); serverAddr != "" {
			logging := &config.LoggingConfig{}
			if err := logging.Finalize(); err != nil {
				return err
			}
			logger := flags.SetupLogger(cCtx, logging, os.Stderr)
			logger.Debug("Using registry server", "address", serverAddr)
			return action(cCtx, &Client{
				cfg:    &config.Config{},
				log:    logger,
				remote: clients.NewDocumentClient(serverAddr),
			})
		}

		cfg, err := flags.LoadConfig(cCtx)
		if err != nil {
			return err
		}

		logger := flags.SetupLogger(cCtx, &cfg.Logging, os.Stderr)
		if err := flags.ResolveSecrets(cfg, logger); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		components, err := flags.NewComponents(ctx, cfg, logger)
		cancel()
		if err != nil {
			return err
		}
		defer components.Close()

		return action(cCtx, &Client{cfg: cfg, log: logger, components: components})
	}
}

func (c *Client) Publish(cCtx *cli.Context) error {
	path := cCtx.String(flagFile.Name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}

	form := workflow.PublishForm{
		Title:          cCtx.String(flagTitle.Name),
		DocType:        cCtx.String(flagDocType.Name),
		Jurisdiction:   cCtx.String(flagJurisdiction.Name),
		Author:         cCtx.String(flagAuthor.Name),
		Description:    cCtx.String(flagDescription.Name),
		Category:       cCtx.String(flagCategory.Name),
		EffectiveDate:  cCtx.String(flagEffectiveDate.Name),
		ExpirationDate: cCtx.String(flagExpirationDate.Name),
		Tags:           cCtx.StringSlice(flagTags.Name),
		File: &interfaces.FileUpload{
			Name: filepath.Base(path),
			Data: data,
		},
	}

	if c.remote != nil {
		view, err := c.remote.Publish(context.Background(), form)
		if err != nil {
			return publishError(err)
		}
		if view.FollowUp != "" {
			c.log.Warn("Published, but the record could not be read back", "err", view.FollowUp)
		}
		return printJSON(view)
	}

	result, err := c.components.NewPublisher(c.cfg, c.log).Publish(context.Background(), form)
	if err != nil {
		return publishError(err)
	}
	if result.FollowUpErr != nil {
		c.log.Warn("Published, but the record could not be read back", "err", result.FollowUpErr)
	}
	return printJSON(result)
}

func publishError(err error) error {
	var verr *interfaces.ValidationError
	if errors.As(err, &verr) {
		for field, message := range verr.Fields {
			fmt.Fprintf(os.Stderr, "%s: %s\n", field, message)
		}
	}
	return fmt.Errorf("publish failed: %w", err)
}

func (c *Client) Get(rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	if c.remote != nil {
		view, err := c.remote.GetDocument(context.Background(), id)
		if err != nil {
			return fmt.Errorf("get failed: %w", err)
		}
		return printJSON(view)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Chain.CallTimeoutValue())
	defer cancel()

	record, err := c.components.Registry.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}
	return printJSON(api.NewDocumentView(record, c.cfg.Storage.GatewayURL))
}

func (c *Client) Revoke(rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	var confirmation *interfaces.Confirmation
	if c.remote != nil {
		confirmation, err = c.remote.RevokeDocument(context.Background(), id)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Chain.CallTimeoutValue()+c.cfg.Chain.ConfirmationTimeoutValue())
		defer cancel()
		confirmation, err = c.components.Registry.Revoke(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("revoke failed: %w", err)
	}
	return printJSON(confirmation)
}

func (c *Client) Verify(contentHash string, timestamp uint64, rawPublisher string) error {
	if !common.IsHexAddress(rawPublisher) {
		return fmt.Errorf("invalid publisher address %q", rawPublisher)
	}

	var valid bool
	var err error
	if c.remote != nil {
		valid, err = c.remote.Verify(context.Background(), contentHash, timestamp, common.HexToAddress(rawPublisher))
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Chain.CallTimeoutValue())
		defer cancel()
		valid, err = c.components.Registry.Verify(ctx, contentHash, timestamp, common.HexToAddress(rawPublisher))
	}
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	return printJSON(api.VerifyResponse{Valid: valid})
}

func (c *Client) List() error {
	if c.remote != nil {
		entries, err := c.remote.ListDocuments(context.Background())
		if err != nil {
			return fmt.Errorf("list failed: %w", err)
		}
		return printJSON(entries)
	}

	listing, err := c.components.NewLister(c.cfg, c.log).Load(context.Background())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	entries := make([]api.ListingEntryView, 0, len(listing.Entries))
	for _, e := range listing.Entries {
		entries = append(entries, api.NewListingEntryView(e, c.cfg.Storage.GatewayURL))
	}
	return printJSON(entries)
}

func parseID(raw string) (interfaces.DocumentID, error) {
	if strings.TrimSpace(raw) == "" {
		return interfaces.DocumentID{}, errors.New("document id argument is required")
	}
	id, err := interfaces.NewDocumentIDFromHex(raw)
	if err != nil {
		return interfaces.DocumentID{}, fmt.Errorf("could not parse document id: %w", err)
	}
	return id, nil
}

func printJSON(v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
