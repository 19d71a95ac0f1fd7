package rpc

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-plugin"
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey          = "worktime-device"
	serviceName           = "worktime.device.v1.DeviceDriver"
	jsonCodecName         = "json"
	methodGetMetadata     = "/" + serviceName + "/GetMetadata"
	methodSampleLocation  = "/" + serviceName + "/SampleLocation"
	methodListVideoInputs = "/" + serviceName + "/ListVideoInputs"
	methodOpenStream      = "/" + serviceName + "/OpenStream"
	methodReadFrame       = "/" + serviceName + "/ReadFrame"
	methodApplyTorch      = "/" + serviceName + "/ApplyTorch"
	methodStopStream      = "/" + serviceName + "/StopStream"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "WORKTIME_DEVICE_DRIVER",
	MagicCookieValue: "worktime",
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

// Failure is embedded in every response. A non-empty Code means the call failed on the device side.
type Failure struct {
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type Metadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type SampleLocationRequest struct {
	HighAccuracy bool  `json:"high_accuracy"`
	TimeoutMS    int64 `json:"timeout_ms"`
	MaximumAgeMS int64 `json:"maximum_age_ms"`
}

type SampleLocationResponse struct {
	Failure
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Accuracy    float64 `json:"accuracy"`
	TimestampMS int64   `json:"timestamp_ms"`
}

type VideoInput struct {
	DeviceID   string `json:"device_id"`
	Label      string `json:"label"`
	FacingMode string `json:"facing_mode"`
}

type ListVideoInputsResponse struct {
	Failure
	Inputs []VideoInput `json:"inputs"`
}

type OpenStreamRequest struct {
	FacingMode string `json:"facing_mode"`
	DeviceID   string `json:"device_id"`
}

type OpenStreamResponse struct {
	Failure
	StreamID       string `json:"stream_id"`
	DeviceID       string `json:"device_id"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	TorchSupported bool   `json:"torch_supported"`
}

type StreamRequest struct {
	StreamID string `json:"stream_id"`
}

type ReadFrameResponse struct {
	Failure
	PNG []byte `json:"png"`
}

type ApplyTorchRequest struct {
	StreamID string `json:"stream_id"`
	On       bool   `json:"on"`
}

type AckResponse struct {
	Failure
}

type DeviceDriverServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	SampleLocation(ctx context.Context, in *SampleLocationRequest) (*SampleLocationResponse, error)
	ListVideoInputs(ctx context.Context, in *Empty) (*ListVideoInputsResponse, error)
	OpenStream(ctx context.Context, in *OpenStreamRequest) (*OpenStreamResponse, error)
	ReadFrame(ctx context.Context, in *StreamRequest) (*ReadFrameResponse, error)
	ApplyTorch(ctx context.Context, in *ApplyTorchRequest) (*AckResponse, error)
	StopStream(ctx context.Context, in *StreamRequest) (*AckResponse, error)
}

type DeviceDriverClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	SampleLocation(ctx context.Context, in *SampleLocationRequest) (*SampleLocationResponse, error)
	ListVideoInputs(ctx context.Context) (*ListVideoInputsResponse, error)
	OpenStream(ctx context.Context, in *OpenStreamRequest) (*OpenStreamResponse, error)
	ReadFrame(ctx context.Context, in *StreamRequest) (*ReadFrameResponse, error)
	ApplyTorch(ctx context.Context, in *ApplyTorchRequest) (*AckResponse, error)
	StopStream(ctx context.Context, in *StreamRequest) (*AckResponse, error)
}

type deviceDriverClient struct {
	conn *grpc.ClientConn
}

func NewDeviceDriverClient(conn *grpc.ClientConn) DeviceDriverClient {
	return &deviceDriverClient{conn: conn}
}

func (c *deviceDriverClient) invoke(ctx context.Context, method string, in, out any) error {
	return c.conn.Invoke(ctx, method, in, out, grpc.CallContentSubtype(jsonCodecName))
}

func (c *deviceDriverClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.invoke(ctx, methodGetMetadata, &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *deviceDriverClient) SampleLocation(ctx context.Context, in *SampleLocationRequest) (*SampleLocationResponse, error) {
	out := &SampleLocationResponse{}
	if err := c.invoke(ctx, methodSampleLocation, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *deviceDriverClient) ListVideoInputs(ctx context.Context) (*ListVideoInputsResponse, error) {
	out := &ListVideoInputsResponse{}
	if err := c.invoke(ctx, methodListVideoInputs, &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *deviceDriverClient) OpenStream(ctx context.Context, in *OpenStreamRequest) (*OpenStreamResponse, error) {
	out := &OpenStreamResponse{}
	if err := c.invoke(ctx, methodOpenStream, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *deviceDriverClient) ReadFrame(ctx context.Context, in *StreamRequest) (*ReadFrameResponse, error) {
	out := &ReadFrameResponse{}
	if err := c.invoke(ctx, methodReadFrame, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *deviceDriverClient) ApplyTorch(ctx context.Context, in *ApplyTorchRequest) (*AckResponse, error) {
	out := &AckResponse{}
	if err := c.invoke(ctx, methodApplyTorch, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *deviceDriverClient) StopStream(ctx context.Context, in *StreamRequest) (*AckResponse, error) {
	out := &AckResponse{}
	if err := c.invoke(ctx, methodStopStream, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// unary builds a method handler that decodes Req and hands it to call, honouring interceptors.
func unary[Req any](fullMethod string, call func(context.Context, *Req) (any, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*Req)
			if !ok {
				return nil, fmt.Errorf("invalid request type")
			}
			return call(ctx, typed)
		}
		return interceptor(ctx, in, info, handler)
	}
}

func RegisterDeviceDriverServer(server grpc.ServiceRegistrar, impl DeviceDriverServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*DeviceDriverServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: unary(methodGetMetadata, func(ctx context.Context, in *Empty) (any, error) {
					return impl.GetMetadata(ctx, in)
				}),
			},
			{
				MethodName: "SampleLocation",
				Handler: unary(methodSampleLocation, func(ctx context.Context, in *SampleLocationRequest) (any, error) {
					return impl.SampleLocation(ctx, in)
				}),
			},
			{
				MethodName: "ListVideoInputs",
				Handler: unary(methodListVideoInputs, func(ctx context.Context, in *Empty) (any, error) {
					return impl.ListVideoInputs(ctx, in)
				}),
			},
			{
				MethodName: "OpenStream",
				Handler: unary(methodOpenStream, func(ctx context.Context, in *OpenStreamRequest) (any, error) {
					return impl.OpenStream(ctx, in)
				}),
			},
			{
				MethodName: "ReadFrame",
				Handler: unary(methodReadFrame, func(ctx context.Context, in *StreamRequest) (any, error) {
					return impl.ReadFrame(ctx, in)
				}),
			},
			{
				MethodName: "ApplyTorch",
				Handler: unary(methodApplyTorch, func(ctx context.Context, in *ApplyTorchRequest) (any, error) {
					return impl.ApplyTorch(ctx, in)
				}),
			},
			{
				MethodName: "StopStream",
				Handler: unary(methodStopStream, func(ctx context.Context, in *StreamRequest) (any, error) {
					return impl.StopStream(ctx, in)
				}),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/device-driver-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl DeviceDriverServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterDeviceDriverServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewDeviceDriverClient(conn), nil
}

func PluginMap(impl DeviceDriverServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
