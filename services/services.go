// Package services wires the external clients and domain services used by the controllers.
package services

import (
	"context"
	"log"
	"time"

	"brainix/config"
	"brainix/services/catalog"
	"brainix/services/email"
	"brainix/services/identity"
	"brainix/services/learning"
	"brainix/services/orders"
	"brainix/services/payments"
	"brainix/services/search"
	"brainix/services/storage"
	"brainix/services/users"

	"gorm.io/gorm"
)

type Registry struct {
	Payments payments.Gateway
	Identity identity.Provider
	Mailer   email.Sender
	Storage  storage.Uploader
	Search   search.Indexer

	Catalog  *catalog.Service
	Orders   *orders.Service
	Learning *learning.Service
	Users    *users.Service
}

// App is the registry used by request handlers and scheduled jobs
var App *Registry

// Init builds every client from cfg, falling back to local implementations
// for services that are not configured
func Init(cfg *config.Config, db *gorm.DB) *Registry {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	r := &Registry{}

	if cfg.StripeSecretKey != "" {
		r.Payments = payments.NewStripeClient(cfg.StripeAPIURL, cfg.StripeSecretKey)
	} else {
		log.Println("Warning: STRIPE_SECRET_KEY is empty, using an in-memory payment gateway.")
		r.Payments = &payments.FakeGateway{}
	}

	if cfg.ClerkSecretKey != "" {
		r.Identity = identity.NewClerkClient(cfg.ClerkAPIURL, cfg.ClerkSecretKey)
	} else {
		log.Println("Warning: CLERK_SECRET_KEY is empty, role changes will not be pushed to Clerk.")
		r.Identity = identity.LogProvider{}
	}

	if cfg.SendgridAPIKey != "" {
		r.Mailer = email.NewSendgridSender(cfg.SendgridAPIKey, cfg.EmailSenderName, cfg.EmailSender)
	} else {
		r.Mailer = email.NewConsoleSender(cfg.EmailSenderName, cfg.EmailSender)
	}

	r.Storage = &storage.LocalUploader{Dir: cfg.UploadDir, URLPrefix: "/uploads"}
	if cfg.MinioEndpoint != "" {
		up, err := storage.NewMinioUploader(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Printf("Warning: MinIO unavailable (%v), storing uploads in %s", err, cfg.UploadDir)
		} else {
			r.Storage = up
		}
	}

	r.Search = search.Noop{}
	if len(cfg.ElasticURLs) > 0 {
		es, err := search.NewElastic(ctx, cfg.ElasticURLs, cfg.ElasticUsername, cfg.ElasticPassword, cfg.ElasticIndex)
		if err != nil {
			log.Printf("Warning: Elasticsearch unavailable (%v), course search falls back to SQL", err)
		} else {
			r.Search = es
		}
	}

	return Wire(r, cfg, db)
}

// Wire builds the domain services on top of the clients already set in r
func Wire(r *Registry, cfg *config.Config, db *gorm.DB) *Registry {
	r.Catalog = &catalog.Service{DB: db, Search: r.Search}
	r.Orders = &orders.Service{
		DB:        db,
		Payments:  r.Payments,
		Mailer:    r.Mailer,
		Currency:  cfg.Currency,
		PublicURL: cfg.PublicURL,
	}
	r.Learning = &learning.Service{DB: db, Mailer: r.Mailer, PublicURL: cfg.PublicURL}
	r.Users = &users.Service{DB: db, Identity: r.Identity, Mailer: r.Mailer}
	return r
}
