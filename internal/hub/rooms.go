package hub

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"sort"

	"Chatline/internal/model"
	"sync"
)

const (
	shardCount = 64 // tune: 16/64/128 depending on load
)

// UserRoom is the account-scoped room every connection of a user is
// auto-joined to. Used for chat:new and chat:deleted.
func UserRoom(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// ChatRoom is the chat-scoped room connections join explicitly. Used
// for message and typing events.
func ChatRoom(chatID int64) string {
	return fmt.Sprintf("chat:%d", chatID)
}

type roomBucket struct {
	sync.RWMutex
	rooms map[string]map[string]*Client
}

// RoomIndex maps room keys to the set of subscribed connections,
// sharded so join/leave/broadcast on unrelated rooms do not contend.
// Rooms have no existence of their own: a room with zero members is
// simply absent from its bucket.
type RoomIndex struct {
	shards [shardCount]*roomBucket
}

func NewRoomIndex() *RoomIndex {
	idx := &RoomIndex{}
	for i := 0; i < shardCount; i++ {
		idx.shards[i] = &roomBucket{
			rooms: make(map[string]map[string]*Client),
		}
	}
	return idx
}

func getShard(room string) uint32 {
	if room == "" {
		return 0
	}
	h := sha1.Sum([]byte(room))
	return binary.BigEndian.Uint32(h[:4]) % shardCount
}

// Join subscribes the connection to a room. Joining a room the
// connection is already in is a no-op.
func (idx *RoomIndex) Join(c *Client, room string) {
	b := idx.shards[getShard(room)]
	b.Lock()
	members, ok := b.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		b.rooms[room] = members
	}
	members[c.ID] = c
	b.Unlock()

	c.addRooms(room)
}

// JoinMany subscribes the connection to several rooms at once, the bulk
// path clients use to resubscribe after a reconnect. The connection's
// own membership set is updated in a single step.
func (idx *RoomIndex) JoinMany(c *Client, rooms []string) {
	for _, room := range rooms {
		b := idx.shards[getShard(room)]
		b.Lock()
		members, ok := b.rooms[room]
		if !ok {
			members = make(map[string]*Client)
			b.rooms[room] = members
		}
		members[c.ID] = c
		b.Unlock()
	}
	c.addRooms(rooms...)
}

// Leave unsubscribes the connection from a room. Leaving a room the
// connection is not in is a no-op, not an error.
func (idx *RoomIndex) Leave(c *Client, room string) {
	b := idx.shards[getShard(room)]
	b.Lock()
	if members, ok := b.rooms[room]; ok {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(b.rooms, room)
		}
	}
	b.Unlock()

	c.removeRoom(room)
}

// LeaveAll removes the connection from every room it is in. Called on
// disconnect, whatever the reason.
func (idx *RoomIndex) LeaveAll(c *Client) {
	for _, room := range c.Rooms() {
		idx.Leave(c, room)
	}
}

// MembersOf returns a snapshot of the connections subscribed to a room.
// The snapshot is stable but the room is not; callers must not assume
// membership holds after the call returns.
func (idx *RoomIndex) MembersOf(room string) []*Client {
	b := idx.shards[getShard(room)]
	b.RLock()
	defer b.RUnlock()

	members, ok := b.rooms[room]
	if !ok || len(members) == 0 {
		return nil
	}
	clients := make([]*Client, 0, len(members))
	for _, c := range members {
		clients = append(clients, c)
	}
	return clients
}

// RoomCount returns the number of rooms with at least one member.
func (idx *RoomIndex) RoomCount() int {
	total := 0
	for _, b := range idx.shards {
		b.RLock()
		total += len(b.rooms)
		b.RUnlock()
	}
	return total
}

// Stats returns per-room member counts for the monitor API, sorted by
// room key so the output is stable.
func (idx *RoomIndex) Stats() []model.RoomInfo {
	var infos []model.RoomInfo
	for _, b := range idx.shards {
		b.RLock()
		for room, members := range b.rooms {
			infos = append(infos, model.RoomInfo{
				Room:        room,
				Connections: len(members),
			})
		}
		b.RUnlock()
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Room < infos[j].Room })
	return infos
}

// each calls fn for every unique client present in any room. Used by
// Stop to close all connections; user rooms guarantee full coverage.
func (idx *RoomIndex) each(fn func(c *Client)) {
	seen := make(map[string]struct{})
	for _, b := range idx.shards {
		b.RLock()
		for _, members := range b.rooms {
			for _, c := range members {
				if _, ok := seen[c.ID]; ok {
					continue
				}
				seen[c.ID] = struct{}{}
				fn(c)
			}
		}
		b.RUnlock()
	}
}
