// dripmax is the capture CLI: it submits outfit and garment photos, waits a
// bounded time for AI feedback and manages the resulting records.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dripmax/dripmax-go/analysis"
	"github.com/dripmax/dripmax-go/auth"
	"github.com/dripmax/dripmax-go/config"
	"github.com/dripmax/dripmax-go/storage"
	"github.com/dripmax/dripmax-go/store"
	"github.com/dripmax/dripmax-go/workflow"
)

const usage = `usage: dripmax <command> [flags]

commands:
  submit  -image <path>   submit an outfit photo and wait for its feedback
  garment -image <path>   submit a garment photo for classification
  list                    list your outfits, most recent first
  show    -id <hex>       fetch one outfit with its feedback
  delete  -id <hex>       delete an outfit and its image
  token   -owner <id>     mint a dev session token

The session token is read from DRIPMAX_SESSION.
`

func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "dripmax: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, command string, args []string) error {
	// token minting needs no backend connections
	if command == "token" {
		fs := flag.NewFlagSet("token", flag.ExitOnError)
		owner := fs.String("owner", "", "owner id to embed in the token")
		fs.Parse(args)
		if *owner == "" {
			return fmt.Errorf("token: -owner is required")
		}
		token, err := auth.Mint(cfg.JWTSecret, *owner, 24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	}

	ownerID, err := resolveOwner(cfg)
	if err != nil {
		return err
	}

	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDatabase)

	objects, err := storage.NewS3Store(ctx, cfg.AWSRegion, cfg.AWSBucket)
	if err != nil {
		return err
	}

	opts := workflow.Options{
		MaxUploadAttempts: cfg.MaxUploadAttempts,
		UploadBackoff:     cfg.UploadBackoff,
		PollInterval:      cfg.PollInterval,
		MaxPollAttempts:   cfg.MaxPollAttempts,
		MaxImageDimension: cfg.MaxImageDimension,
		JPEGQuality:       cfg.JPEGQuality,
	}
	outfits := store.NewMongoOutfits(db)
	outfitWF := workflow.NewOutfitWorkflow(objects, outfits, nil, opts)

	switch command {
	case "submit":
		fs := flag.NewFlagSet("submit", flag.ExitOnError)
		image := fs.String("image", "", "path to the outfit photo")
		fs.Parse(args)
		if *image == "" {
			return fmt.Errorf("submit: -image is required")
		}

		outfit, err := outfitWF.Submit(ctx, ownerID, *image)
		if err != nil {
			return err
		}
		if outfit.Feedback == nil {
			fmt.Fprintln(os.Stderr, "feedback is still pending; run `dripmax show` later")
		}
		return printJSON(outfit)

	case "garment":
		fs := flag.NewFlagSet("garment", flag.ExitOnError)
		image := fs.String("image", "", "path to the garment photo")
		fs.Parse(args)
		if *image == "" {
			return fmt.Errorf("garment: -image is required")
		}

		analyzer, err := analysis.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		garmentWF := workflow.NewGarmentWorkflow(objects, store.NewMongoGarments(db), analyzer, opts)

		garment, err := garmentWF.Submit(ctx, ownerID, *image)
		if err != nil {
			return err
		}
		return printJSON(garment)

	case "list":
		list, err := outfitWF.Refresh(ctx, ownerID)
		if err != nil {
			return err
		}
		return printJSON(list)

	case "show":
		id, err := parseID("show", args)
		if err != nil {
			return err
		}
		outfit, err := outfits.GetWithFeedback(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(outfit)

	case "delete":
		id, err := parseID("delete", args)
		if err != nil {
			return err
		}
		return outfitWF.Delete(ctx, id)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func resolveOwner(cfg config.Config) (string, error) {
	if token := os.Getenv("DRIPMAX_SESSION"); token != "" {
		return auth.OwnerID(cfg.JWTSecret, token)
	}
	return "", fmt.Errorf("DRIPMAX_SESSION is not set; mint one with `dripmax token -owner <id>`")
}

func parseID(command string, args []string) (primitive.ObjectID, error) {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	raw := fs.String("id", "", "outfit id")
	fs.Parse(args)
	if *raw == "" {
		return primitive.NilObjectID, fmt.Errorf("%s: -id is required", command)
	}

	id, err := primitive.ObjectIDFromHex(*raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s: invalid id %q", command, *raw)
	}
	return id, nil
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
