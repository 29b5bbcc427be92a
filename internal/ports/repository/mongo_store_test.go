package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const mockNamespace = "registry.employees"

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB, "employees")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNamespace, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "doc-1"},
			{Key: "id", Value: "doc-1"},
			{Key: "employeeId", Value: int64(42)},
			{Key: "department", Value: "R&D"},
		}))

		doc, err := store.Get(context.Background(), "doc-1")
		require.NoError(mt, err)
		assert.Equal(mt, Document{"id": "doc-1", "employeeId": int64(42), "department": "R&D"}, doc)
	})

	mt.Run("get miss is not found", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB, "employees")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNamespace, mtest.FirstBatch))

		_, err := store.Get(context.Background(), "missing")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("query keeps natural order", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB, "employees")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNamespace, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "second"}, {Key: "id", Value: "second"}, {Key: "employeeId", Value: int64(5)}},
			bson.D{{Key: "_id", Value: "first"}, {Key: "id", Value: "first"}, {Key: "employeeId", Value: int64(5)}},
		))

		docs, err := store.Query(context.Background(), Where().Equal("employeeId", int64(5)))
		require.NoError(mt, err)
		require.Len(mt, docs, 2)
		assert.Equal(mt, "second", docs[0].ID(), "results come back in store order, not id order")

		cmd := mt.GetStartedEvent().Command
		natural, err := cmd.LookupErr("sort", "$natural")
		require.NoError(mt, err)
		assert.EqualValues(mt, 1, natural.AsInt64())
	})

	mt.Run("create duplicate is a conflict", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB, "employees")
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := store.Create(context.Background(), Document{"id": "doc-1"})
		assert.ErrorIs(mt, err, ErrConflict)
	})

	mt.Run("replace miss is not found", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB, "employees")
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := store.Replace(context.Background(), "gone", Document{"id": "gone"})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("replace keeps the storage identity", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB, "employees")
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		require.NoError(mt, store.Replace(context.Background(), "doc-1", Document{"role": "Lead"}))

		update, err := mt.GetStartedEvent().Command.LookupErr("updates")
		require.NoError(mt, err)
		values, err := update.Array().Values()
		require.NoError(mt, err)
		require.Len(mt, values, 1)
		replacement := values[0].Document().Lookup("u").Document()
		assert.Equal(mt, "doc-1", replacement.Lookup("_id").StringValue())
		assert.Equal(mt, "doc-1", replacement.Lookup("id").StringValue())
		assert.Equal(mt, "Lead", replacement.Lookup("role").StringValue())
	})

	mt.Run("delete miss is not found", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB, "employees")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.ErrorIs(mt, store.Delete(context.Background(), "gone"), ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB, "employees")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, store.Delete(context.Background(), "doc-1"))
	})
}
