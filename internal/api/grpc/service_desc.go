package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// TaskServiceName - полное имя gRPC сервиса
const TaskServiceName = "task.v1.TaskService"

// taskService - контракт сервиса. Все сообщения - google.protobuf.Struct,
// поэтому .proto и сгенерированный код не нужны.
type taskService interface {
	ListTasks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetStatistics(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv taskService, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(taskService), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + TaskServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(taskService), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var taskServiceDesc = grpc.ServiceDesc{
	ServiceName: TaskServiceName,
	HandlerType: (*taskService)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ListTasks", taskService.ListTasks),
		unaryMethod("GetTask", taskService.GetTask),
		unaryMethod("CreateTask", taskService.CreateTask),
		unaryMethod("UpdateTask", taskService.UpdateTask),
		unaryMethod("DeleteTask", taskService.DeleteTask),
		unaryMethod("GetStatistics", taskService.GetStatistics),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "task/v1/task.proto",
}
