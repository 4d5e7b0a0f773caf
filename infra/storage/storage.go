package storage

import (
	"fmt"

	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/firebase"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/storage"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// SetupUploadsBucket creates the bucket for receipts and avatars and links
// it to Firebase so download tokens work.
func SetupUploadsBucket(ctx *pulumi.Context, prov *gcp.Provider) (*storage.Bucket, error) {
	gcpCfg := config.New(ctx, "gcp")
	projectID := gcpCfg.Require("project")
	region := gcpCfg.Require("region")

	bucket, err := storage.NewBucket(ctx, "uploadsBucket", &storage.BucketArgs{
		Name:                     pulumi.String(fmt.Sprintf("%s-wallet-uploads", projectID)),
		Location:                 pulumi.String(region),
		UniformBucketLevelAccess: pulumi.Bool(true),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return nil, err
	}

	_, err = firebase.NewStorageBucket(ctx, "uploadsFirebaseBucket", &firebase.StorageBucketArgs{
		Project:  pulumi.String(projectID),
		BucketId: bucket.Name,
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return nil, err
	}
	return bucket, nil
}
