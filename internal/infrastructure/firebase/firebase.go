package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Connect initializes the Firebase app and returns the Firestore and Auth
// clients the adapters are built on.
func Connect(ctx context.Context, projectID, credentialsFile string, log *zap.Logger) (*firestore.Client, *auth.Client, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("create firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("create auth client: %w", err)
	}

	log.Info("firestore connection established", zap.String("project_id", projectID))

	return client, authClient, nil
}
