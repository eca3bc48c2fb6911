package redis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/storeqa/internal/db"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); !errors.Is(err, ErrNoAddrs) {
		t.Fatalf("expected ErrNoAddrs, got %v", err)
	}
}

func TestIsRedisErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
		want bool
	}{
		{"server reply any case", mock.Result(mock.RedisError("Index Already Exists")).Error(), "index already exists", true},
		{"upper case reply", mock.Result(mock.RedisError("UNKNOWN INDEX NAME")).Error(), "unknown index name", true},
		{"different reply", mock.Result(mock.RedisError("ERR syntax error")).Error(), "unknown index name", false},
		{"transport error", context.DeadlineExceeded, "deadline", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRedisErr(tc.err, tc.msg); got != tc.want {
				t.Errorf("isRedisErr(%v, %q) = %v, want %v", tc.err, tc.msg, got, tc.want)
			}
		})
	}
}

func TestWaitForReady_ReturnsOnFirstPong(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	if err := NewStoreForTest(c).WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	err := NewStoreForTest(c).WaitForReady(context.Background(), 250*time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected timeout carrying the last ping error, got %v", err)
	}
}

// --- kv.go tests ---

func TestGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "storeqa:emb_cache:abc")).
		Return(mock.Result(mock.RedisBlobString("value")))

	s := NewStoreForTest(c)
	data, err := s.Get(context.Background(), "storeqa:emb_cache:abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "value" {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.Get(context.Background(), "mykey")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.Get(context.Background(), "mykey")
	if errors.Is(err, db.ErrKeyNotFound) {
		t.Error("should not be ErrKeyNotFound for network errors")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "mykey", "myvalue")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.Set(context.Background(), "mykey", []byte("myvalue")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetWithTTL_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SET" && cmd[1] == "mykey" && cmd[2] == "myvalue" && cmd[3] == "EX"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.SetWithTTL(context.Background(), "mykey", []byte("myvalue"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetWithTTL_ZeroKeepsForever(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "storeqa:emb_cache:m:abc", "vec")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.SetWithTTL(context.Background(), "storeqa:emb_cache:m:abc", []byte("vec"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- write.go tests ---

func TestUpsert_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	hsetWithVector := func(key string) gomock.Matcher {
		return mock.MatchFn(func(cmd []string) bool {
			if cmd[0] != "HSET" || cmd[1] != key {
				return false
			}
			for i, a := range cmd {
				if a == "embedding" && i+1 < len(cmd) && len(cmd[i+1]) == 8 {
					return true
				}
			}
			return false
		})
	}

	c.EXPECT().
		DoMulti(gomock.Any(), hsetWithVector("storeqa:web_chunks:c1"), hsetWithVector("storeqa:web_chunks:c2")).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(2)),
			mock.Result(mock.RedisInt64(2)),
		})

	s := NewStoreForTest(c)
	err := s.Upsert(context.Background(), "web_chunks", []db.Record{
		{ID: "c1", Fields: map[string]string{"url": "u"}, Vector: []float32{1, 2}, VectorField: "embedding"},
		{ID: "c2", Fields: map[string]string{"url": "u"}, Vector: []float32{3, 4}, VectorField: "embedding"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpsert_PartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.ErrorResult(context.DeadlineExceeded),
		})

	s := NewStoreForTest(c)
	err := s.Upsert(context.Background(), "web_pages", []db.Record{
		{ID: "a", Fields: map[string]string{"title": "A"}},
		{ID: "b", Fields: map[string]string{"title": "B"}},
	})
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
	if !strings.Contains(err.Error(), "storeqa:web_pages:b") {
		t.Errorf("error should name the failing key: %v", err)
	}
}

func TestUpsert_Validation(t *testing.T) {
	s := NewStoreForTest(nil)
	if err := s.Upsert(context.Background(), "web_pages", nil); err != nil {
		t.Fatalf("empty upsert should be a no-op: %v", err)
	}
	if err := s.Upsert(context.Background(), "bad:name", []db.Record{{ID: "a"}}); err == nil {
		t.Error("expected error for invalid collection")
	}
	if err := s.Upsert(context.Background(), "web_pages", []db.Record{{}}); err == nil {
		t.Error("expected error for missing id")
	}
}

// --- index.go tests ---

func TestCreateIndex_DerivesPrefix(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			joined := strings.Join(cmd, " ")
			return cmd[0] == "FT.CREATE" && cmd[1] == "web_pages" &&
				strings.Contains(joined, "ON HASH PREFIX 1 storeqa:web_pages: SCHEMA") &&
				strings.Contains(joined, "title TEXT WITHSUFFIXTRIE")
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	idx := db.NewIndex("web_pages").Text("url").Text("title").MustBuild()
	if err := s.CreateIndex(context.Background(), idx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	idx := db.NewIndex("web_pages").Tag("url").MustBuild()
	err := s.CreateIndex(context.Background(), idx)
	if !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestCreateIndex_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	idx := db.NewIndex("web_pages").Tag("url").MustBuild()
	if err := s.CreateIndex(context.Background(), idx); !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestDropIndex_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "web_pages")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	err := s.DropIndex(context.Background(), "web_pages")
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestIndexExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.INFO", "web_pages")).
			Return(mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("web_pages")))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.INFO", "web_pages")).
			Return(mock.Result(mock.RedisError("Unknown Index name"))),
	)

	s := NewStoreForTest(c)
	exists, err := s.IndexExists(context.Background(), "web_pages")
	if err != nil || !exists {
		t.Fatalf("expected true, got %v (err=%v)", exists, err)
	}
	exists, err = s.IndexExists(context.Background(), "web_pages")
	if err != nil || exists {
		t.Fatalf("expected false, got %v (err=%v)", exists, err)
	}
}

func TestBuildFieldArgs_AllTypes(t *testing.T) {
	tests := []struct {
		name  string
		field db.IndexField
		want  string
	}{
		{"tag", db.IndexField{Name: "f", Type: db.IndexFieldTag}, "TAG"},
		{"numeric", db.IndexField{Name: "f", Type: db.IndexFieldNumeric}, "NUMERIC"},
		{"text", db.IndexField{Name: "f", Type: db.IndexFieldText}, "WITHSUFFIXTRIE"},
		{"vector_flat", db.IndexField{
			Name: "f", Type: db.IndexFieldVector,
			VectorDim: 128, VectorAlgo: db.VectorFlat,
		}, "FLAT"},
		{"vector_hnsw", db.IndexField{
			Name: "f", Type: db.IndexFieldVector,
			VectorDim: 256, VectorAlgo: db.VectorHNSW,
			VectorM: 16, VectorEFConstruct: 200,
		}, "EF_CONSTRUCTION"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args, err := buildFieldArgs(&tc.field)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertContains(t, args, tc.want)
		})
	}
}

func TestBuildFieldArgs_Errors(t *testing.T) {
	if _, err := buildFieldArgs(&db.IndexField{Name: "", Type: db.IndexFieldTag}); err == nil {
		t.Error("expected error for empty field name")
	}
	if _, err := buildFieldArgs(&db.IndexField{Name: "f", Type: db.IndexFieldType(99)}); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := buildFieldArgs(&db.IndexField{Name: "f", Type: db.IndexFieldVector}); err == nil {
		t.Error("expected error for zero vector dim")
	}
}

func assertContains(t *testing.T, args []string, want string) {
	t.Helper()
	for _, a := range args {
		if a == want {
			return
		}
	}
	t.Errorf("expected %q in args %v", want, args)
}

// --- search.go tests ---

func TestSearchKNN_RangeWithFloor(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			joined := strings.Join(cmd, " ")
			return cmd[0] == "FT.SEARCH" && cmd[1] == "web_chunks" &&
				strings.Contains(cmd[2], "@embedding:[VECTOR_RANGE $RADIUS $BLOB]") &&
				strings.Contains(joined, "SORTBY __vector_score ASC LIMIT 0 10") &&
				strings.Contains(joined, "RADIUS 0.32")
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("storeqa:web_chunks:c1"),
			mock.RedisArray(
				mock.RedisString("__vector_score"), mock.RedisString("0.1"),
				mock.RedisString("url"), mock.RedisString("https://shop.test/a"),
			),
			mock.RedisString("storeqa:web_chunks:c2"),
			mock.RedisArray(
				mock.RedisString("__vector_score"), mock.RedisString("0.3"),
				mock.RedisString("url"), mock.RedisString("https://shop.test/b"),
			),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		Collection:    "web_chunks",
		VectorField:   "embedding",
		Vector:        []float32{0.1, 0.2},
		K:             10,
		MinSimilarity: 0.68,
		ReturnFields:  []string{"url", "content"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	e := result.Entries[0]
	if e.Key != "c1" {
		t.Errorf("expected key stripped to c1, got %s", e.Key)
	}
	if e.Score < 0.89 || e.Score > 0.91 {
		t.Errorf("expected similarity ~0.9, got %f", e.Score)
	}
	if _, ok := e.Fields["__vector_score"]; ok {
		t.Error("score field must be removed from fields")
	}
}

func TestSearchKNN_DropsRowsUnderFloor(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("storeqa:web_chunks:c1"),
			mock.RedisArray(mock.RedisString("__vector_score"), mock.RedisString("0.5")),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		Collection: "web_chunks", VectorField: "embedding",
		Vector: []float32{1}, K: 5, MinSimilarity: 0.68,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("expected row under floor dropped, got %+v", result.Entries)
	}
}

func TestSearchKNN_PlainKNNWithoutFloor(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[2] == "*=>[KNN 3 @embedding $BLOB AS __vector_score]"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		Collection: "web_chunks", VectorField: "embedding", Vector: []float32{1}, K: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(result.Entries))
	}
}

func TestSearchKNN_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		Collection: "web_chunks", VectorField: "embedding", Vector: []float32{1}, K: 3,
	})
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestSearchKNN_Validation(t *testing.T) {
	s := NewStoreForTest(nil)
	ctx := context.Background()
	tests := []db.KNNQuery{
		{VectorField: "embedding", Vector: []float32{1}, K: 1},
		{Collection: "c", Vector: []float32{1}, K: 1},
		{Collection: "c", VectorField: "embedding", K: 1},
		{Collection: "c", VectorField: "embedding", Vector: []float32{1}},
		{Collection: "c", VectorField: "embedding", Vector: []float32{1}, K: 1, MinSimilarity: 1.5},
	}
	for i := range tests {
		if _, err := s.SearchKNN(ctx, &tests[i]); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestSearchText_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			joined := strings.Join(cmd, " ")
			return cmd[0] == "FT.SEARCH" && cmd[1] == "web_pages" &&
				cmd[2] == "@url|title:(*return*)" &&
				strings.Contains(joined, "LIMIT 0 5")
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("storeqa:web_pages:p1"),
			mock.RedisArray(
				mock.RedisString("url"), mock.RedisString("https://shop.test/policies/refund-policy"),
				mock.RedisString("title"), mock.RedisString("Return Policy"),
			),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchText(context.Background(), &db.TextQuery{
		Collection:   "web_pages",
		Term:         "RETURN!",
		Fields:       []string{"url", "title"},
		Limit:        5,
		ReturnFields: []string{"url", "title"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].Fields["title"] != "Return Policy" {
		t.Errorf("unexpected entries: %+v", result.Entries)
	}
}

func TestSearchText_ShortTermMatchesNothing(t *testing.T) {
	s := NewStoreForTest(nil)
	result, err := s.SearchText(context.Background(), &db.TextQuery{
		Collection: "web_pages", Term: "a*", Fields: []string{"title"}, Limit: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(result.Entries))
	}
}

func TestSearchText_Validation(t *testing.T) {
	s := NewStoreForTest(nil)
	ctx := context.Background()
	if _, err := s.SearchText(ctx, &db.TextQuery{Term: "x", Fields: []string{"f"}, Limit: 1}); err == nil {
		t.Error("expected error for empty collection")
	}
	if _, err := s.SearchText(ctx, &db.TextQuery{Collection: "c", Term: "x", Limit: 1}); err == nil {
		t.Error("expected error for missing fields")
	}
	if _, err := s.SearchText(ctx, &db.TextQuery{Collection: "c", Term: "x", Fields: []string{"f"}}); err == nil {
		t.Error("expected error for zero limit")
	}
}

func TestSanitizeTerm(t *testing.T) {
	tests := map[string]string{
		"Return":        "return",
		"size-guide":    "sizeguide",
		"@title:(*x*)":  "titlex",
		"  ":            "",
		"Ünïcode 42":    "ünïcode42",
	}
	for in, want := range tests {
		if got := sanitizeTerm(in); got != want {
			t.Errorf("sanitizeTerm(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestVectorToBytes(t *testing.T) {
	b := vectorToBytes([]float32{1.0, 2.0})
	if len(b) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(b))
	}
}

// --- helpers ---

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
