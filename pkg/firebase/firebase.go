package firebase

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/storage"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app with its auth and storage clients
type App struct {
	FirebaseApp   *firebase.App
	AuthClient    *auth.Client
	StorageClient *storage.Client
}

// InitFirebase initializes the Firebase application. storageBucket may be
// empty when the project's default bucket is configured in the credentials.
func InitFirebase(ctx context.Context, credentialsPath, storageBucket string) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("Firebase credentials path not provided")
	}

	// Check if the credentials file exists
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("Firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	var conf *firebase.Config
	if storageBucket != "" {
		conf = &firebase.Config{StorageBucket: storageBucket}
	}

	firebaseApp, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	storageClient, err := firebaseApp.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase storage client: %w", err)
	}

	logger.Log.Info("Firebase app, auth and storage clients initialized successfully!")
	return &App{FirebaseApp: firebaseApp, AuthClient: authClient, StorageClient: storageClient}, nil
}
