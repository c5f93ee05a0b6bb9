package sqlinline

const QInsertFunnelEvent = `--sql 41bf19eb-4ae3-4205-9cb2-b2098a2d430e
insert into funnel_events(id, event_type, metadata, created_at)
values (gen_random_uuid(), $1::text, coalesce($2::jsonb, '{}'::jsonb), now());
`
