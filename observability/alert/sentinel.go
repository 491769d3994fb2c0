package alert

import (
	"context"
	"fmt"

	"github.com/code19m/errx"
	sentinelpb "github.com/code19m/sentinel/pb"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// SentinelProvider ships error reports to a Sentinel endpoint over
// gRPC.
type SentinelProvider struct {
	cfg            Config
	serviceName    string
	serviceVersion string

	client sentinelpb.SentinelServiceClient
	conn   *grpc.ClientConn
}

// NewSentinelProvider dials the Sentinel endpoint from cfg and returns
// a provider reporting under the given service identity. With
// cfg.Disable set it dials nothing and drops every report.
func NewSentinelProvider(cfg Config, serviceName, serviceVersion string) (*SentinelProvider, error) {
	if cfg.Disable {
		return &SentinelProvider{cfg: cfg}, nil
	}

	conn, err := grpc.NewClient(
		fmt.Sprintf("%s:%d", cfg.SentinelHost, cfg.SentinelPort),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &SentinelProvider{
		cfg:            cfg,
		serviceName:    serviceName,
		serviceVersion: serviceVersion,
		client:         sentinelpb.NewSentinelServiceClient(conn),
		conn:           conn,
	}, nil
}

// SendError reports one error occurrence. Delivery is bounded by
// cfg.SendTimeout and detached from the caller's cancellation, so an
// aborted request still gets its alert out. The provider's service
// version rides along in the details.
func (sp *SentinelProvider) SendError(
	ctx context.Context,
	errCode, msg, operation string,
	details map[string]string,
) error {
	if sp.cfg.Disable {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sp.cfg.SendTimeout)
	defer cancel()

	if details == nil {
		details = make(map[string]string, 1)
	}
	details["service_version"] = sp.serviceVersion

	_, err := sp.client.SendError(ctx, &sentinelpb.ErrorInfo{
		Code:      errCode,
		Message:   msg,
		Service:   sp.serviceName,
		Operation: operation,
		Details:   details,
	})

	return errx.Wrap(err)
}

// Close releases the underlying gRPC connection.
func (sp *SentinelProvider) Close() error {
	if sp.conn == nil {
		return nil
	}
	return sp.conn.Close()
}
