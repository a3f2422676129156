package app

import (
	"sync"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

type RoomManagerImpl struct {
	mu    sync.RWMutex
	rooms map[domain.MeetingCode]core.RoomService
}

func NewRoomManager() core.RoomManager {
	return &RoomManagerImpl{rooms: make(map[domain.MeetingCode]core.RoomService)}
}

func (f *RoomManagerImpl) GetOrCreate(m *domain.Meeting) core.RoomService {
	f.mu.RLock()
	room, ok := f.rooms[m.Code]
	f.mu.RUnlock()
	if ok {
		return room
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if room, ok = f.rooms[m.Code]; ok {
		return room
	}
	room = core.NewRoomService(m)
	f.rooms[m.Code] = room
	return room
}

func (f *RoomManagerImpl) GetRoom(code domain.MeetingCode) (core.RoomService, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[code]
	return room, ok
}

func (f *RoomManagerImpl) List() []core.RoomInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(f.rooms))
	for code, r := range f.rooms {
		out = append(out, core.RoomInfo{Code: code, Title: r.Meeting().Title, MemberCount: r.MemberCount()})
	}
	return out
}

func (f *RoomManagerImpl) StopRoom(code domain.MeetingCode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rooms, code)
}
