// Package protocol implements the length-prefixed, tagged, JSON-bodied wire
// format shared by the lobby and developer listeners: [length:u32 BE]
// [type:u16 BE][body]. length counts the type field plus the body, never
// just the body.
package protocol

import "fmt"

// Type is the two-byte message tag carried in every frame.
type Type uint16

const (
	// Authentication (0x00XX)
	AuthRequest       Type = 0x0001
	AuthResponse      Type = 0x0002
	RegisterRequest   Type = 0x0003
	RegisterResponse  Type = 0x0004
	Logout            Type = 0x0005

	// Store browsing (0x01XX)
	GameListRequest   Type = 0x0101
	GameListResponse  Type = 0x0102
	GameDetailRequest Type = 0x0103
	GameDetailResponse Type = 0x0104
	SearchGames       Type = 0x0105

	// Download management (0x02XX)
	DownloadRequest  Type = 0x0201
	DownloadMeta     Type = 0x0202
	DownloadChunk    Type = 0x0203
	DownloadComplete Type = 0x0204
	CheckUpdate      Type = 0x0205
	UpdateAvailable  Type = 0x0206

	// Room management (0x03XX)
	CreateRoom      Type = 0x0301
	RoomCreated     Type = 0x0302
	JoinRoom        Type = 0x0303
	RoomJoined      Type = 0x0304
	LeaveRoom       Type = 0x0305
	RoomListRequest Type = 0x0306
	RoomListResponse Type = 0x0307
	StartGameRequest Type = 0x0308
	GameStarted     Type = 0x0309
	RoomUpdate      Type = 0x030A

	// Review system (0x04XX)
	SubmitReview     Type = 0x0401
	ReviewSubmitted  Type = 0x0402
	GetReviews       Type = 0x0403
	ReviewsResponse  Type = 0x0404

	// Developer operations (0x05XX)
	UploadStart     Type = 0x0501
	UploadReady     Type = 0x0502
	UploadChunk     Type = 0x0503
	UploadComplete  Type = 0x0504
	UploadSuccess   Type = 0x0505
	UpdateGame      Type = 0x0506
	UpdateSuccess   Type = 0x0507
	RemoveGame      Type = 0x0508
	RemoveSuccess   Type = 0x0509
	MyGamesRequest  Type = 0x050A
	MyGamesResponse Type = 0x050B

	// Plugin system (0x06XX)
	PluginListRequest  Type = 0x0601
	PluginListResponse Type = 0x0602
	PluginDownload     Type = 0x0603
	PluginMessage      Type = 0x0604

	// General
	ErrorType Type = 0x00FF
	Success   Type = 0x00FE
	Heartbeat Type = 0x00FD
)

var typeNames = map[Type]string{
	AuthRequest:        "AUTH_REQUEST",
	AuthResponse:       "AUTH_RESPONSE",
	RegisterRequest:    "REGISTER_REQUEST",
	RegisterResponse:   "REGISTER_RESPONSE",
	Logout:             "LOGOUT",
	GameListRequest:    "GAME_LIST_REQUEST",
	GameListResponse:   "GAME_LIST_RESPONSE",
	GameDetailRequest:  "GAME_DETAIL_REQUEST",
	GameDetailResponse: "GAME_DETAIL_RESPONSE",
	SearchGames:        "SEARCH_GAMES",
	DownloadRequest:    "DOWNLOAD_REQUEST",
	DownloadMeta:       "DOWNLOAD_META",
	DownloadChunk:      "DOWNLOAD_CHUNK",
	DownloadComplete:   "DOWNLOAD_COMPLETE",
	CheckUpdate:        "CHECK_UPDATE",
	UpdateAvailable:    "UPDATE_AVAILABLE",
	CreateRoom:         "CREATE_ROOM",
	RoomCreated:        "ROOM_CREATED",
	JoinRoom:           "JOIN_ROOM",
	RoomJoined:         "ROOM_JOINED",
	LeaveRoom:          "LEAVE_ROOM",
	RoomListRequest:    "ROOM_LIST_REQUEST",
	RoomListResponse:   "ROOM_LIST_RESPONSE",
	StartGameRequest:   "START_GAME_REQUEST",
	GameStarted:        "GAME_STARTED",
	RoomUpdate:         "ROOM_UPDATE",
	SubmitReview:       "SUBMIT_REVIEW",
	ReviewSubmitted:    "REVIEW_SUBMITTED",
	GetReviews:         "GET_REVIEWS",
	ReviewsResponse:    "REVIEWS_RESPONSE",
	UploadStart:        "UPLOAD_START",
	UploadReady:        "UPLOAD_READY",
	UploadChunk:        "UPLOAD_CHUNK",
	UploadComplete:     "UPLOAD_COMPLETE",
	UploadSuccess:      "UPLOAD_SUCCESS",
	UpdateGame:         "UPDATE_GAME",
	UpdateSuccess:      "UPDATE_SUCCESS",
	RemoveGame:         "REMOVE_GAME",
	RemoveSuccess:      "REMOVE_SUCCESS",
	MyGamesRequest:     "MY_GAMES_REQUEST",
	MyGamesResponse:    "MY_GAMES_RESPONSE",
	PluginListRequest:  "PLUGIN_LIST_REQUEST",
	PluginListResponse: "PLUGIN_LIST_RESPONSE",
	PluginDownload:     "PLUGIN_DOWNLOAD",
	PluginMessage:      "PLUGIN_MESSAGE",
	ErrorType:          "ERROR",
	Success:            "SUCCESS",
	Heartbeat:          "HEARTBEAT",
}

// String renders the symbolic tag name, falling back to the numeric value
// for unrecognized tags.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", uint16(t))
}

// expectedResponse maps a request tag to the specific success tag a client
// should wait for. A handler that only has a generic SUCCESS/ERROR to send
// back must still prefer the specific tag listed here when one exists.
var expectedResponse = map[Type]Type{
	AuthRequest:      AuthResponse,
	RegisterRequest:  RegisterResponse,
	GameListRequest:  GameListResponse,
	GameDetailRequest: GameDetailResponse,
	SearchGames:      GameListResponse,
	DownloadRequest:  DownloadMeta,
	CheckUpdate:      UpdateAvailable,
	CreateRoom:       RoomCreated,
	JoinRoom:         RoomJoined,
	RoomListRequest:  RoomListResponse,
	StartGameRequest: GameStarted,
	SubmitReview:     ReviewSubmitted,
	GetReviews:       ReviewsResponse,
	UploadStart:      UploadReady,
	UploadComplete:   UploadSuccess,
	UpdateGame:       UpdateSuccess,
	RemoveGame:       RemoveSuccess,
	MyGamesRequest:   MyGamesResponse,
	PluginListRequest: PluginListResponse,
}

// ExpectedResponse reports the specific response tag a request tag
// correlates to, if the protocol defines one. Handlers must never collapse
// a specific response into generic SUCCESS when this returns ok == true.
func ExpectedResponse(request Type) (tag Type, ok bool) {
	tag, ok = expectedResponse[request]
	return tag, ok
}
