package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/almajirisurvey/backend/api/echo"
	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/beggar"
	"github.com/almajirisurvey/backend/core/draft"
	"github.com/almajirisurvey/backend/core/file"
	"github.com/almajirisurvey/backend/core/school"
	"github.com/almajirisurvey/backend/core/stats"
	"github.com/almajirisurvey/backend/core/user"
	logsvc "github.com/almajirisurvey/backend/services/logger"
	"github.com/almajirisurvey/backend/storage/blob"
	"github.com/almajirisurvey/backend/storage/mongodb"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	ctx := context.Background()
	db, err := mongodb.Open(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(ctx); err != nil {
			logger.Error("closing database", err)
		}
	}()
	if err = db.EnsureIndexes(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("ensuring indexes: %v", err), err)
	}

	// set up blob storage
	blobStore, err := blob.NewLocalStorage(conf.Upload.Dir)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up blob storage: %v", err), err)
	}

	// set up services
	usrSvc := user.NewService(mongodb.NewUserRepository(db))
	tokenSvc := user.NewTokenService(conf)
	schoolSvc := school.NewService(mongodb.NewSchoolRepository(db))
	beggarSvc := beggar.NewService(mongodb.NewBeggarRepository(db))
	draftSvc := draft.NewService(mongodb.NewDraftRepository(db))
	fileSvc := file.NewService(mongodb.NewFileRepository(db), blobStore, logger, conf)
	statsSvc := stats.NewService(mongodb.NewStatsRepository(db))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Validate:   validate,
			Translator: translator,
			UserSvc:    usrSvc,
			TokenSvc:   tokenSvc,
			SchoolSvc:  schoolSvc,
			BeggarSvc:  beggarSvc,
			DraftSvc:   draftSvc,
			FileSvc:    fileSvc,
			StatsSvc:   statsSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		sctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(sctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
