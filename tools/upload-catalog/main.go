package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	awspkg "github.com/ElenaCherpakova/e-store-aws-backend/pkg/aws"
)

func main() {
	_ = godotenv.Load()

	var file, bucket, prefix, name string
	flag.StringVar(&file, "file", "", "CSV file to upload")
	flag.StringVar(&bucket, "bucket", os.Getenv("BUCKET_NAME"), "S3 bucket name")
	flag.StringVar(&prefix, "prefix", "uploaded/", "key prefix watched by the file parser")
	flag.StringVar(&name, "name", "", "object name (defaults to the file's base name)")
	flag.Parse()

	if file == "" || bucket == "" {
		log.Fatal("-file and -bucket (or BUCKET_NAME) are required")
	}
	if name == "" {
		name = filepath.Base(file)
	}

	f, err := os.Open(file)
	if err != nil {
		log.Fatalf("open %s: %v", file, err)
	}
	defer f.Close()

	ctx := context.Background()
	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}

	location, err := awspkg.NewS3Client(awsCfg).Upload(ctx, bucket, prefix+name, "text/csv", f)
	if err != nil {
		log.Fatalf("upload: %v", err)
	}
	fmt.Printf("Upload complete. location=%s\n", location)
}
