package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/wallet-api/infra/cloudrun"
	"github.com/GregMSThompson/wallet-api/infra/docker"
	"github.com/GregMSThompson/wallet-api/infra/firestore"
	"github.com/GregMSThompson/wallet-api/infra/identity"
	"github.com/GregMSThompson/wallet-api/infra/kms"
	"github.com/GregMSThompson/wallet-api/infra/provider"
	"github.com/GregMSThompson/wallet-api/infra/secret"
	"github.com/GregMSThompson/wallet-api/infra/storage"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// email/password sign-in for firebase auth
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// database plus the composite indexes the transaction filters need
		err = firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// receipts and avatars
		bucket, err := storage.SetupUploadsBucket(ctx, prov)
		if err != nil {
			return err
		}

		// card secrets are sealed with this key
		kmsSvc, err := kms.SetupKMS(ctx, prov)
		if err != nil {
			return err
		}
		cardKey, err := kms.CreateKey(ctx, prov, "wallet", "card-secrets")
		if err != nil {
			return err
		}

		secretSvc, err := secret.SetupSecretManager(ctx, prov)
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx, prov)
		if err != nil {
			return err
		}

		_, err = cloudrun.SetupCloudRun(ctx, prov, &cloudrun.Resources{
			Bucket:  bucket,
			CardKey: cardKey,
		}, ident, repo, kmsSvc, secretSvc)
		return err
	})
}
