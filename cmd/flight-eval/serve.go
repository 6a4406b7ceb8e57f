package main

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"
	"github.com/triage-ai/palisade/flight_eval/internal/auth"
	"github.com/triage-ai/palisade/flight_eval/internal/engine"
	"github.com/triage-ai/palisade/flight_eval/internal/engine/judges"
	"github.com/triage-ai/palisade/flight_eval/internal/server"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Grade RPC over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := a.logger

			p, err := a.loadValidatedPack(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			logger.Info("starting flight eval server",
				zap.String("port", a.cfg.Port),
				zap.String("model_name", a.cfg.ModelName),
			)

			eng := engine.NewEvalEngine(judges.Defaults(), engine.Config{
				SearchTool: a.cfg.SearchTool,
				CommitTool: a.cfg.CommitTool,
			}, logger)

			writer := newEventWriter(a.cfg.ClickHouseDSN, logger)
			defer writer.Close()

			// Auth: bcrypt key hashes if configured, otherwise any fev_ key
			var authenticator auth.Authenticator
			if len(a.cfg.APIKeyHashes) > 0 {
				authenticator = auth.NewKeyAuthenticator(a.cfg.APIKeyHashes, a.cfg.AuthCacheTTL, logger)
				logger.Info("key authenticator configured", zap.Int("keys", len(a.cfg.APIKeyHashes)))
			} else {
				authenticator = auth.NewStaticAuthenticator()
				logger.Info("using static authenticator (no FLIGHT_EVAL_API_KEY_HASH)")
			}

			grpcServer := grpc.NewServer(
				grpc.KeepaliveParams(keepalive.ServerParameters{
					MaxConnectionIdle:     5 * time.Minute,
					MaxConnectionAge:      30 * time.Minute,
					MaxConnectionAgeGrace: 10 * time.Second,
					Time:                  30 * time.Second,
					Timeout:               5 * time.Second,
				}),
				grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
					MinTime:             10 * time.Second,
					PermitWithoutStream: true,
				}),
				grpc.MaxRecvMsgSize(4*1024*1024),
				grpc.MaxSendMsgSize(4*1024*1024),
			)

			evalServer := server.NewEvalServer(eng, authenticator, p, writer, a.cfg.ModelName, logger)
			server.RegisterFlightEvalServiceServer(grpcServer, evalServer)

			healthServer := health.NewServer()
			healthpb.RegisterHealthServer(grpcServer, healthServer)
			healthServer.SetServingStatus(server.ServiceName, healthpb.HealthCheckResponse_SERVING)

			reflection.Register(grpcServer)

			lis, err := net.Listen("tcp", ":"+a.cfg.Port)
			if err != nil {
				return fmt.Errorf("listen on port %s: %w", a.cfg.Port, err)
			}

			// Graceful shutdown
			go func() {
				<-ctx.Done()
				logger.Info("shutting down")
				healthServer.SetServingStatus(server.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
				grpcServer.GracefulStop()
			}()

			logger.Info("flight eval server listening", zap.String("addr", lis.Addr().String()))
			if err := grpcServer.Serve(lis); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&a.cfg.Port, "port", a.cfg.Port, "gRPC listen port")
	cmd.Flags().StringVar(&a.cfg.ModelName, "model", a.cfg.ModelName, "default model name when a request omits one")
	return cmd
}
