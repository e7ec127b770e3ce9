package mqv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "quasar.mq.v1.MessagingService"

// MessagingServiceServer is the server API for the v1 messaging service.
type MessagingServiceServer interface {
	QueryRoute(context.Context, *QueryRouteRequest) (*QueryRouteResponse, error)
	QueryAssignment(context.Context, *QueryAssignmentRequest) (*QueryAssignmentResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	ReceiveMessage(context.Context, *ReceiveMessageRequest) (*ReceiveMessageResponse, error)
	AckMessage(context.Context, *AckMessageRequest) (*AckMessageResponse, error)
	NackMessage(context.Context, *NackMessageRequest) (*NackMessageResponse, error)
	Heartbeat(context.Context, *HeartbeatRequest) (*HeartbeatResponse, error)
	HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error)
	NotifyClientTermination(context.Context, *NotifyClientTerminationRequest) (*NotifyClientTerminationResponse, error)
	EndTransaction(context.Context, *EndTransactionRequest) (*EndTransactionResponse, error)
	PullMessage(context.Context, *PullMessageRequest) (*PullMessageResponse, error)
	QueryOffset(context.Context, *QueryOffsetRequest) (*QueryOffsetResponse, error)
	ReportThreadStackTrace(context.Context, *ReportThreadStackTraceRequest) (*ReportThreadStackTraceResponse, error)
	ReportMessageConsumptionResult(context.Context, *ReportMessageConsumptionResultRequest) (*ReportMessageConsumptionResultResponse, error)
	PollCommand(*PollCommandRequest, MessagingService_PollCommandServer) error
}

// UnimplementedMessagingServiceServer provides forward-compatible defaults.
type UnimplementedMessagingServiceServer struct{}

func (UnimplementedMessagingServiceServer) QueryRoute(context.Context, *QueryRouteRequest) (*QueryRouteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method QueryRoute not implemented")
}
func (UnimplementedMessagingServiceServer) QueryAssignment(context.Context, *QueryAssignmentRequest) (*QueryAssignmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method QueryAssignment not implemented")
}
func (UnimplementedMessagingServiceServer) SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SendMessage not implemented")
}
func (UnimplementedMessagingServiceServer) ReceiveMessage(context.Context, *ReceiveMessageRequest) (*ReceiveMessageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReceiveMessage not implemented")
}
func (UnimplementedMessagingServiceServer) AckMessage(context.Context, *AckMessageRequest) (*AckMessageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AckMessage not implemented")
}
func (UnimplementedMessagingServiceServer) NackMessage(context.Context, *NackMessageRequest) (*NackMessageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method NackMessage not implemented")
}
func (UnimplementedMessagingServiceServer) Heartbeat(context.Context, *HeartbeatRequest) (*HeartbeatResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Heartbeat not implemented")
}
func (UnimplementedMessagingServiceServer) HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method HealthCheck not implemented")
}
func (UnimplementedMessagingServiceServer) NotifyClientTermination(context.Context, *NotifyClientTerminationRequest) (*NotifyClientTerminationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method NotifyClientTermination not implemented")
}
func (UnimplementedMessagingServiceServer) EndTransaction(context.Context, *EndTransactionRequest) (*EndTransactionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method EndTransaction not implemented")
}
func (UnimplementedMessagingServiceServer) PullMessage(context.Context, *PullMessageRequest) (*PullMessageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PullMessage not implemented")
}
func (UnimplementedMessagingServiceServer) QueryOffset(context.Context, *QueryOffsetRequest) (*QueryOffsetResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method QueryOffset not implemented")
}
func (UnimplementedMessagingServiceServer) ReportThreadStackTrace(context.Context, *ReportThreadStackTraceRequest) (*ReportThreadStackTraceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReportThreadStackTrace not implemented")
}
func (UnimplementedMessagingServiceServer) ReportMessageConsumptionResult(context.Context, *ReportMessageConsumptionResultRequest) (*ReportMessageConsumptionResultResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReportMessageConsumptionResult not implemented")
}
func (UnimplementedMessagingServiceServer) PollCommand(*PollCommandRequest, MessagingService_PollCommandServer) error {
	return status.Error(codes.Unimplemented, "method PollCommand not implemented")
}

// MessagingService_PollCommandServer is the send side of the poll stream.
type MessagingService_PollCommandServer interface {
	Send(*PolledCommand) error
	grpc.ServerStream
}

type messagingServicePollCommandServer struct {
	grpc.ServerStream
}

func (s *messagingServicePollCommandServer) Send(m *PolledCommand) error {
	return s.ServerStream.SendMsg(m)
}

// RegisterMessagingServiceServer registers the service implementation.
func RegisterMessagingServiceServer(s grpc.ServiceRegistrar, srv MessagingServiceServer) {
	s.RegisterService(&MessagingService_ServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](
	method string,
	invoke func(MessagingServiceServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return invoke(srv.(MessagingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return invoke(srv.(MessagingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _MessagingService_PollCommand_Handler(srv any, stream grpc.ServerStream) error {
	m := new(PollCommandRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(MessagingServiceServer).PollCommand(m, &messagingServicePollCommandServer{stream})
}

// MessagingService_ServiceDesc is the grpc.ServiceDesc for the service.
var MessagingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MessagingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "QueryRoute", Handler: unaryHandler("QueryRoute", MessagingServiceServer.QueryRoute)},
		{MethodName: "QueryAssignment", Handler: unaryHandler("QueryAssignment", MessagingServiceServer.QueryAssignment)},
		{MethodName: "SendMessage", Handler: unaryHandler("SendMessage", MessagingServiceServer.SendMessage)},
		{MethodName: "ReceiveMessage", Handler: unaryHandler("ReceiveMessage", MessagingServiceServer.ReceiveMessage)},
		{MethodName: "AckMessage", Handler: unaryHandler("AckMessage", MessagingServiceServer.AckMessage)},
		{MethodName: "NackMessage", Handler: unaryHandler("NackMessage", MessagingServiceServer.NackMessage)},
		{MethodName: "Heartbeat", Handler: unaryHandler("Heartbeat", MessagingServiceServer.Heartbeat)},
		{MethodName: "HealthCheck", Handler: unaryHandler("HealthCheck", MessagingServiceServer.HealthCheck)},
		{MethodName: "NotifyClientTermination", Handler: unaryHandler("NotifyClientTermination", MessagingServiceServer.NotifyClientTermination)},
		{MethodName: "EndTransaction", Handler: unaryHandler("EndTransaction", MessagingServiceServer.EndTransaction)},
		{MethodName: "PullMessage", Handler: unaryHandler("PullMessage", MessagingServiceServer.PullMessage)},
		{MethodName: "QueryOffset", Handler: unaryHandler("QueryOffset", MessagingServiceServer.QueryOffset)},
		{MethodName: "ReportThreadStackTrace", Handler: unaryHandler("ReportThreadStackTrace", MessagingServiceServer.ReportThreadStackTrace)},
		{MethodName: "ReportMessageConsumptionResult", Handler: unaryHandler("ReportMessageConsumptionResult", MessagingServiceServer.ReportMessageConsumptionResult)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "PollCommand",
			Handler:       _MessagingService_PollCommand_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "api/mqv1/service.proto",
}
