// Package inventory lists the running EC2 instances that can be targeted by
// a port-forwarding session.
package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/atomicstack/susum/internal/instance"
	"github.com/atomicstack/susum/internal/logging/events"
)

// FallbackRegion is used when neither the caller nor the SDK's default chain
// resolves a region.
const FallbackRegion = "ap-southeast-2"

// Client looks up instances with the AWS SDK default credential chain.
type Client struct {
	// Region overrides the resolved region when set.
	Region string
	// Profile selects a shared config profile when set.
	Profile string
}

var newAPI = func(ctx context.Context, region, profile string) (ec2.DescribeInstancesAPIClient, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	cfg.Region = resolveRegion(cfg.Region)
	return ec2.NewFromConfig(cfg), nil
}

func resolveRegion(region string) string {
	if region == "" {
		return FallbackRegion
	}
	return region
}

// Fetch returns every running instance visible to the caller, in the order
// the API reports them.
func (c Client) Fetch(ctx context.Context) ([]instance.Record, error) {
	api, err := newAPI(ctx, c.Region, c.Profile)
	if err != nil {
		return nil, err
	}
	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{{
			Name:   aws.String("instance-state-name"),
			Values: []string{"running"},
		}},
	}
	paginator := ec2.NewDescribeInstancesPaginator(api, input)
	var records []instance.Record
	for page := 1; paginator.HasMorePages(); page++ {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe instances: %w", err)
		}
		before := len(records)
		for _, reservation := range out.Reservations {
			for _, inst := range reservation.Instances {
				records = append(records, toRecord(inst))
			}
		}
		events.Load.Page(page, len(records)-before)
	}
	return records, nil
}

func toRecord(inst types.Instance) instance.Record {
	tags := make([]instance.Tag, 0, len(inst.Tags))
	for _, tag := range inst.Tags {
		if tag.Key == nil {
			continue
		}
		tags = append(tags, instance.Tag{Key: *tag.Key, Value: aws.ToString(tag.Value)})
	}
	return instance.New(aws.ToString(inst.InstanceId), tags)
}
