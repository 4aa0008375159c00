package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "patientmonitor.v1.VitalsMonitorService"

const (
	methodCheckBloodPressure = "/" + ServiceName + "/CheckBloodPressure"
	methodCheckTemperature   = "/" + ServiceName + "/CheckTemperature"
	methodGetPatient         = "/" + ServiceName + "/GetPatient"
)

type BloodPressureRequest struct {
	PatientID string `json:"patient_id"`
	Upper     int32  `json:"upper"`
	Lower     int32  `json:"lower"`
}

type TemperatureRequest struct {
	PatientID string `json:"patient_id"`
	// десятичная строка, например "36.60"
	Temperature string `json:"temperature"`
}

type CheckResponse struct {
	PatientID string `json:"patient_id"`
	Kind      string `json:"kind"`
	Abnormal  bool   `json:"abnormal"`
	Message   string `json:"message,omitempty"`
}

type PatientRequest struct {
	ID string `json:"id"`
}

type PatientResponse struct {
	ID                string `json:"id"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	BirthDate         string `json:"birth_date"`
	NormalTemperature string `json:"normal_temperature"`
	BloodPressure     struct {
		Upper int32 `json:"upper"`
		Lower int32 `json:"lower"`
	} `json:"blood_pressure"`
}

type VitalsMonitorServer interface {
	CheckBloodPressure(ctx context.Context, req *BloodPressureRequest) (*CheckResponse, error)
	CheckTemperature(ctx context.Context, req *TemperatureRequest) (*CheckResponse, error)
	GetPatient(ctx context.Context, req *PatientRequest) (*PatientResponse, error)
}

func RegisterVitalsMonitorServer(s grpc.ServiceRegistrar, srv VitalsMonitorServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VitalsMonitorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CheckBloodPressure", Handler: checkBloodPressureHandler},
		{MethodName: "CheckTemperature", Handler: checkTemperatureHandler},
		{MethodName: "GetPatient", Handler: getPatientHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func checkBloodPressureHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(BloodPressureRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VitalsMonitorServer).CheckBloodPressure(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodCheckBloodPressure}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VitalsMonitorServer).CheckBloodPressure(ctx, req.(*BloodPressureRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func checkTemperatureHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TemperatureRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VitalsMonitorServer).CheckTemperature(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodCheckTemperature}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VitalsMonitorServer).CheckTemperature(ctx, req.(*TemperatureRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getPatientHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PatientRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VitalsMonitorServer).GetPatient(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetPatient}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VitalsMonitorServer).GetPatient(ctx, req.(*PatientRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Client клиент сервиса, всегда использует JSON кодек
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) CheckBloodPressure(ctx context.Context, in *BloodPressureRequest, opts ...grpc.CallOption) (*CheckResponse, error) {
	out := new(CheckResponse)
	if err := c.cc.Invoke(ctx, methodCheckBloodPressure, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CheckTemperature(ctx context.Context, in *TemperatureRequest, opts ...grpc.CallOption) (*CheckResponse, error) {
	out := new(CheckResponse)
	if err := c.cc.Invoke(ctx, methodCheckTemperature, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPatient(ctx context.Context, in *PatientRequest, opts ...grpc.CallOption) (*PatientResponse, error) {
	out := new(PatientResponse)
	if err := c.cc.Invoke(ctx, methodGetPatient, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
}
