package gerr

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	InvalidFilter        = status.Error(codes.InvalidArgument, "invalid analytics filter")
	InvalidOrderUpdate   = status.Error(codes.InvalidArgument, "invalid order update")
	OrderNotFound        = status.Error(codes.NotFound, "order not found")
	DataStoreUnavailable = status.Error(codes.Unavailable, "data store unavailable")
	CacheUnavailable     = status.Error(codes.Unavailable, "cache unavailable")
	TooManyBackfills     = status.Error(codes.ResourceExhausted, "backfill requested too often")
)
