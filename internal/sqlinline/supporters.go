package sqlinline

const QInsertSupporter = `--sql 2dcbee67-402b-43cd-82dc-f46fbaa14a10
insert into supporters(id, external_ref, name, email, message, amount_int, currency, is_recurring, created_at)
values (gen_random_uuid(), $1::text, $2::text, $3::text, $4::text, $5::bigint, $6::text, $7::boolean, now())
on conflict (external_ref) do nothing
returning id, created_at;
`

const QListRecentSupporters = `--sql 5cfd4e38-4bae-4f60-853e-39a092cdb71a
select id, external_ref, name, email, message, amount_int, currency, is_recurring, created_at
from supporters
order by created_at desc
limit $1::int;
`

const QSumOneTimeSince = `--sql f26988f7-3638-4c15-91f4-4b28bbd71b60
select coalesce(sum(amount_int), 0)::bigint
from supporters
where is_recurring = false
  and created_at >= $1::timestamptz;
`

const QSumRecurring = `--sql 4245f0ad-f29f-47fa-b864-f5fd7aa93117
select coalesce(sum(amount_int), 0)::bigint
from supporters
where is_recurring = true;
`
